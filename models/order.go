package models

import (
	"time"

	"github.com/stripe/stripe-go/v79"

	"gofalre.io/storefront/models/enum"
)

// OrderDraft 代表訂單
//
// A draft is the checkout-time snapshot of the cart plus the shipping and
// payment details gathered from the customer. It is what gets handed to the
// backend; the backend owns the order from then on.
type OrderDraft struct {
	ID              string             `json:"id,omitempty"`
	Status          enum.OrderStatus   `json:"status"`
	Currency        stripe.Currency    `json:"currency"`
	Subtotal        float64            `json:"subtotal"`
	Shipping        float64            `json:"shipping"`
	Tax             float64            `json:"tax"`
	Total           float64            `json:"total"`
	PaymentMethod   enum.PaymentMethod `json:"payment_method"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty"`
	RedirectURL     string             `json:"redirect_url,omitempty"`
	ShippingAddress ShippingAddress    `json:"shipping_address"`
	Items           []OrderItem        `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
}

// OrderItem 代表訂單中的單個商品項目
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	UnitPrice float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

// ShippingAddress carries the checkout form fields.
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// AllowChangeStatus reports whether the draft may move to the given status.
func (o *OrderDraft) AllowChangeStatus(next enum.OrderStatus) bool {
	switch o.Status {
	case enum.OrderStatusPending:
		return next == enum.OrderStatusPaid ||
			next == enum.OrderStatusFailed ||
			next == enum.OrderStatusCancelled
	case enum.OrderStatusPaid:
		return next == enum.OrderStatusCompleted || next == enum.OrderStatusCancelled
	case enum.OrderStatusFailed:
		return next == enum.OrderStatusPending || next == enum.OrderStatusCancelled
	default:
		return false
	}
}

// CanCancel reports whether the customer may still cancel.
func (o *OrderDraft) CanCancel() bool {
	return o.Status == enum.OrderStatusPending || o.Status == enum.OrderStatusFailed
}
