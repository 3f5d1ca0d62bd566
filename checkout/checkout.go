// Package checkout turns the live cart into an order draft and hands it to
// the backend. The cart is cleared only once the order is confirmed placed,
// and at most once per order: a failed submission or a failed payment leaves
// the cart untouched so the customer can retry.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// OrderPlacer is the remote collaborator that accepts the final order. For
// card payments the backend responds with a payment intent and a gateway
// redirect URL; confirmation arrives later as a gateway event.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, draft *models.OrderDraft) (*Confirmation, error)
}

// Confirmation is the backend's response to a successful submission.
type Confirmation struct {
	OrderID         string
	PaymentIntentID string
	RedirectURL     string
}

// Flow drives a checkout session for one cart.
type Flow struct {
	store   cart.Store
	pricing cart.Pricing
	placer  OrderPlacer
	logger  *zap.Logger

	mu       sync.Mutex
	pending  map[string]*models.OrderDraft // order id -> submitted draft awaiting payment
	byIntent map[string]string             // payment intent id -> order id
}

func NewFlow(store cart.Store, pricing cart.Pricing, placer OrderPlacer, logger *zap.Logger) *Flow {
	return &Flow{
		store:    store,
		pricing:  pricing,
		placer:   placer,
		logger:   logger,
		pending:  make(map[string]*models.OrderDraft),
		byIntent: make(map[string]string),
	}
}

// Submit validates the shipping address, snapshots the cart into an order
// draft and submits it. Cash-on-delivery orders are confirmed by the backend
// accepting them, so the cart clears immediately; card orders stay pending
// until the payment gateway confirms.
func (f *Flow) Submit(ctx context.Context, address models.ShippingAddress, method enum.PaymentMethod) (*models.OrderDraft, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	state := f.store.State()
	if state.Empty() {
		return nil, ErrEmptyCart
	}

	draft := f.buildDraft(state, address, method)

	conf, err := f.placer.PlaceOrder(ctx, draft)
	if err != nil {
		// cart stays as it was; the customer can retry
		f.logger.Error("Order submission failed", zap.Error(err))
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	draft.ID = conf.OrderID
	draft.PaymentIntentID = conf.PaymentIntentID
	draft.RedirectURL = conf.RedirectURL

	if method == enum.PaymentMethodCashOnDelivery {
		f.store.Clear(ctx)
		f.logger.Info("Order placed, cart cleared", zap.String("order_id", draft.ID))
		return draft, nil
	}

	f.mu.Lock()
	f.pending[draft.ID] = draft
	if draft.PaymentIntentID != "" {
		f.byIntent[draft.PaymentIntentID] = draft.ID
	}
	f.mu.Unlock()

	f.logger.Info("Order submitted, awaiting payment confirmation",
		zap.String("order_id", draft.ID),
		zap.String("payment_intent_id", draft.PaymentIntentID))

	return draft, nil
}

// ConfirmOrder marks a submitted order paid and clears the cart. Repeat
// confirmations and unknown order ids are no-ops, so the cart clears at most
// once per order.
func (f *Flow) ConfirmOrder(ctx context.Context, orderID string) {
	f.mu.Lock()
	draft, ok := f.pending[orderID]
	if !ok {
		f.mu.Unlock()
		return
	}
	delete(f.pending, orderID)
	delete(f.byIntent, draft.PaymentIntentID)
	f.mu.Unlock()

	draft.Status = enum.OrderStatusPaid
	f.store.Clear(ctx)
	f.logger.Info("Payment confirmed, cart cleared", zap.String("order_id", orderID))
}

// ConfirmByPaymentIntent resolves the order for a gateway payment intent and
// confirms it. Unknown intents are ignored; the event may belong to another
// session.
func (f *Flow) ConfirmByPaymentIntent(ctx context.Context, paymentIntentID string) {
	f.mu.Lock()
	orderID, ok := f.byIntent[paymentIntentID]
	f.mu.Unlock()

	if !ok {
		return
	}
	f.ConfirmOrder(ctx, orderID)
}

// FailByPaymentIntent marks the matching submitted order failed. The cart is
// left untouched.
func (f *Flow) FailByPaymentIntent(paymentIntentID string, status enum.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orderID, ok := f.byIntent[paymentIntentID]
	if !ok {
		return
	}

	draft := f.pending[orderID]
	if draft != nil && draft.AllowChangeStatus(status) {
		draft.Status = status
	}
	delete(f.pending, orderID)
	delete(f.byIntent, paymentIntentID)

	f.logger.Warn("Payment failed, cart left intact",
		zap.String("order_id", orderID),
		zap.String("status", string(status)))
}

// Pending returns the submitted draft for an order id, if it is still
// awaiting confirmation.
func (f *Flow) Pending(orderID string) (*models.OrderDraft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.pending[orderID]
	return draft, ok
}

func (f *Flow) buildDraft(state *models.CartState, address models.ShippingAddress, method enum.PaymentMethod) *models.OrderDraft {
	items := make([]models.OrderItem, len(state.Items))
	for i, item := range state.Items {
		items[i] = models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Image:     item.ImageURL,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice * float64(item.Quantity),
		}
	}

	subtotal := cart.Subtotal(state)
	return &models.OrderDraft{
		Status:          enum.OrderStatusPending,
		Currency:        state.Currency,
		Subtotal:        subtotal,
		Shipping:        f.pricing.ShippingCost(subtotal),
		Tax:             f.pricing.Tax(subtotal),
		Total:           f.pricing.OrderTotal(subtotal),
		PaymentMethod:   method,
		ShippingAddress: address,
		Items:           items,
		CreatedAt:       time.Now(),
	}
}
