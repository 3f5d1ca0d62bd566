package storefront

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"gofalre.io/storefront/checkout"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/persist"
)

type stubPlacer struct {
	conf *checkout.Confirmation
}

func (p *stubPlacer) PlaceOrder(_ context.Context, _ *models.OrderDraft) (*checkout.Confirmation, error) {
	return p.conf, nil
}

func shippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "416-555-1234",
		Address:   "1 Queen St W",
		City:      "Toronto",
		State:     "ON",
		ZipCode:   "M5H 2M9",
		Country:   "Canada",
	}
}

func newTestService(t *testing.T, store persist.Store, placer checkout.OrderPlacer) Service {
	t.Helper()
	svc := NewService(context.Background(), Config{Scope: "cust_1", Workers: 2}, store, placer, nil, zap.NewNop())
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestLogoutClearsCartAndSession(t *testing.T) {
	ctx := context.Background()
	mem := persist.NewMemory()
	svc := newTestService(t, mem, &stubPlacer{})

	require.NoError(t, svc.Login(ctx, json.RawMessage(`{"email":"ada@example.com"}`), "tok_123"))
	svc.AddToCart(ctx, models.LineItem{ID: "p1", UnitPrice: 25}, 2)
	svc.AddToCart(ctx, models.LineItem{ID: "p2", UnitPrice: 10}, 1)

	require.NoError(t, svc.Logout(ctx))

	assert.True(t, svc.Cart().Empty())
	assert.Equal(t, models.Session{}, svc.Session())

	var snap models.CartState
	assert.ErrorIs(t, mem.Load(ctx, "cust_1", persist.PartitionCart, &snap), persist.ErrNotFound)
	var session models.Session
	assert.ErrorIs(t, mem.Load(ctx, "cust_1", persist.PartitionAuth, &session), persist.ErrNotFound)
}

func TestSessionHydratesAcrossRestart(t *testing.T) {
	ctx := context.Background()
	mem := persist.NewMemory()

	first := newTestService(t, mem, &stubPlacer{})
	require.NoError(t, first.Login(ctx, json.RawMessage(`{"email":"ada@example.com"}`), "tok_123"))
	first.AddToCart(ctx, models.LineItem{ID: "p1", Name: "Mug", UnitPrice: 25}, 2)

	second := newTestService(t, mem, &stubPlacer{})
	assert.Equal(t, "tok_123", second.Session().Token)
	assert.True(t, second.Session().Authenticated)
	assert.Equal(t, first.Cart(), second.Cart())
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, persist.NewMemory(), &stubPlacer{})

	svc.AddToCart(ctx, models.LineItem{ID: "p1", UnitPrice: 25}, 2)
	got := svc.Summary()

	assert.Equal(t, 2, got.ItemCount)
	assert.InDelta(t, 50.00, got.Subtotal, 1e-9)
	assert.InDelta(t, 10.00, got.Shipping, 1e-9)
}

func paymentIntentEvent(id, intentID string, eventType stripe.EventType) *stripe.Event {
	return &stripe.Event{
		ID:   id,
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"` + intentID + `"}`)},
	}
}

func TestPaymentSucceededEventClearsCart(t *testing.T) {
	ctx := context.Background()
	placer := &stubPlacer{conf: &checkout.Confirmation{OrderID: "ord_1", PaymentIntentID: "pi_1"}}
	svc := newTestService(t, persist.NewMemory(), placer)
	s := svc.(*service)

	svc.AddToCart(ctx, models.LineItem{ID: "p1", UnitPrice: 25}, 1)
	_, err := svc.Checkout(ctx, shippingAddress(), enum.PaymentMethodCard)
	require.NoError(t, err)
	require.False(t, svc.Cart().Empty())

	err = s.ProcessEvent(ctx, paymentIntentEvent("evt_1", "pi_1", stripe.EventTypePaymentIntentSucceeded))
	require.NoError(t, err)
	assert.True(t, svc.Cart().Empty())
}

func TestPaymentFailedEventLeavesCart(t *testing.T) {
	ctx := context.Background()
	placer := &stubPlacer{conf: &checkout.Confirmation{OrderID: "ord_1", PaymentIntentID: "pi_1"}}
	svc := newTestService(t, persist.NewMemory(), placer)
	s := svc.(*service)

	svc.AddToCart(ctx, models.LineItem{ID: "p1", UnitPrice: 25}, 1)
	_, err := svc.Checkout(ctx, shippingAddress(), enum.PaymentMethodCard)
	require.NoError(t, err)

	err = s.ProcessEvent(ctx, paymentIntentEvent("evt_1", "pi_1", stripe.EventTypePaymentIntentPaymentFailed))
	require.NoError(t, err)
	assert.False(t, svc.Cart().Empty())
}

func TestDuplicateEventHandledOnce(t *testing.T) {
	ctx := context.Background()
	placer := &stubPlacer{conf: &checkout.Confirmation{OrderID: "ord_1", PaymentIntentID: "pi_1"}}
	svc := newTestService(t, persist.NewMemory(), placer)
	s := svc.(*service)

	svc.AddToCart(ctx, models.LineItem{ID: "p1", UnitPrice: 25}, 1)
	_, err := svc.Checkout(ctx, shippingAddress(), enum.PaymentMethodCard)
	require.NoError(t, err)

	event := paymentIntentEvent("evt_1", "pi_1", stripe.EventTypePaymentIntentSucceeded)
	require.NoError(t, s.ProcessEvent(ctx, event))
	require.True(t, svc.Cart().Empty())

	// redelivery of the same event must not clear a fresh cart
	svc.AddToCart(ctx, models.LineItem{ID: "p2", UnitPrice: 5}, 1)
	require.NoError(t, s.ProcessEvent(ctx, event))
	assert.False(t, svc.Cart().Empty())
}

func TestUnhandledEventTypeIgnored(t *testing.T) {
	svc := newTestService(t, persist.NewMemory(), &stubPlacer{})
	s := svc.(*service)

	err := s.ProcessEvent(context.Background(), &stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	assert.NoError(t, err)
}
