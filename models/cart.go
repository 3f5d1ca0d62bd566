package models

import (
	"github.com/stripe/stripe-go/v79"
)

// LineItem 代表購物車中的單個商品項目
//
// UnitPrice and Stock are snapshots taken when the product is added; they are
// never re-fetched, so later catalog changes do not affect items already in
// the cart.
type LineItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	SKU       string  `json:"sku,omitempty"`
}

// CartState 代表購物車
//
// Items is ordered: insertion order is preserved across mutations and across
// a persistence round-trip, so list rendering stays stable.
type CartState struct {
	Currency stripe.Currency `json:"currency"`
	Items    []LineItem      `json:"items"`
}

func NewCartState() *CartState {
	return new(CartState)
}

// Find returns a pointer into Items for the given product id, or nil.
func (s *CartState) Find(id string) *LineItem {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

func (s *CartState) Empty() bool {
	return len(s.Items) == 0
}

// Clone returns a deep copy so no caller ever holds a mutable reference to
// the store's own state.
func (s *CartState) Clone() *CartState {
	out := &CartState{Currency: s.Currency}
	if len(s.Items) > 0 {
		out.Items = make([]LineItem, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}
