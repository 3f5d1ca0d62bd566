package cart

import (
	"gofalre.io/storefront/models"
)

// Pricing centralizes the checkout cost policy. Tax is computed at checkout
// time only; the generic cart summary carries count, subtotal and shipping.
type Pricing struct {
	FreeShippingThreshold float64
	FlatShippingFee       float64
	TaxRate               float64
}

// DefaultPricing matches the storefront checkout policy: free shipping above
// 100.00, a flat 10.00 below it, 13% tax.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: 100.00,
		FlatShippingFee:       10.00,
		TaxRate:               0.13,
	}
}

// ItemCount is the badge count: the sum of quantities over all line items.
func ItemCount(state *models.CartState) int {
	count := 0
	for _, item := range state.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums price×quantity using the price snapshot stored on each line
// item. Price changes after add-to-cart never affect items already in the
// cart.
func Subtotal(state *models.CartState) float64 {
	var total float64
	for _, item := range state.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ShippingCost is free above the threshold, a flat fee otherwise.
func (p Pricing) ShippingCost(subtotal float64) float64 {
	if subtotal > p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}

func (p Pricing) Tax(subtotal float64) float64 {
	return subtotal * p.TaxRate
}

// OrderTotal is the checkout-time total: subtotal + shipping + tax.
func (p Pricing) OrderTotal(subtotal float64) float64 {
	return subtotal + p.ShippingCost(subtotal) + p.Tax(subtotal)
}

// Summary is the read model the cart and product views render.
type Summary struct {
	ItemCount int     `json:"item_count"`
	Subtotal  float64 `json:"subtotal"`
	Shipping  float64 `json:"shipping"`
}

// Summarize recomputes the summary from the given state. Pure: same state,
// same summary.
func (p Pricing) Summarize(state *models.CartState) Summary {
	subtotal := Subtotal(state)
	return Summary{
		ItemCount: ItemCount(state),
		Subtotal:  subtotal,
		Shipping:  p.ShippingCost(subtotal),
	}
}
