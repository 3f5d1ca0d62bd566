package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/checkout"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/persist"
)

// Service is the storefront facade the view layer dispatches into: cart
// mutations, derived summaries, the session lifecycle and the checkout flow.
type Service interface {
	AddToCart(ctx context.Context, item models.LineItem, quantity int) *models.CartState
	UpdateQuantity(ctx context.Context, id string, quantity int) *models.CartState
	RemoveItem(ctx context.Context, id string) *models.CartState
	ClearCart(ctx context.Context) *models.CartState
	Cart() *models.CartState
	Summary() cart.Summary

	Login(ctx context.Context, user json.RawMessage, token string) error
	Logout(ctx context.Context) error
	Session() models.Session

	Checkout(ctx context.Context, address models.ShippingAddress, method enum.PaymentMethod) (*models.OrderDraft, error)

	Shutdown()
}

// Config carries the per-session knobs. Zero values get defaults.
type Config struct {
	// Scope namespaces the persisted state, typically the session or
	// customer id.
	Scope string

	// Pricing overrides the checkout cost policy.
	Pricing *cart.Pricing

	// Workers sizes the gateway event worker pool.
	Workers int
}

type service struct {
	scope   string
	pricing cart.Pricing

	cart     cart.Store
	checkout *checkout.Flow
	persist  persist.Store

	mu      sync.Mutex
	session models.Session

	eventManager *EventManager
	workerPool   *WorkerPool

	natsConn *nats.Conn
	logger   *zap.Logger
}

const defaultWorkers = 10

// NewService wires a storefront session: it hydrates the cart and auth
// partitions from the persistent store, builds the checkout flow and, when a
// NATS connection is given, subscribes to payment gateway events. Each
// caller owns its Service; there is no package-level instance.
func NewService(ctx context.Context, cfg Config, store persist.Store, placer checkout.OrderPlacer, natsConn *nats.Conn, logger *zap.Logger) Service {
	pricing := cart.DefaultPricing()
	if cfg.Pricing != nil {
		pricing = *cfg.Pricing
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	s := &service{
		scope:    cfg.Scope,
		pricing:  pricing,
		persist:  store,
		natsConn: natsConn,
		logger:   logger,
	}

	s.cart = cart.NewStore(ctx, cfg.Scope, store, logger)
	s.checkout = checkout.NewFlow(s.cart, pricing, placer, logger)
	s.hydrateSession(ctx)

	s.eventManager = NewEventManager(natsConn, logger)
	s.workerPool = NewWorkerPool(workers, s, logger)
	s.registerEventHandlers()

	// 訂閱事件
	if natsConn != nil {
		if err := s.eventManager.SubscribeToEvents(s.workerPool); err != nil {
			logger.Error("Failed to subscribe to events", zap.Error(err))
		}
	}

	return s
}

func (s *service) AddToCart(ctx context.Context, item models.LineItem, quantity int) *models.CartState {
	return s.cart.AddToCart(ctx, item, quantity)
}

func (s *service) UpdateQuantity(ctx context.Context, id string, quantity int) *models.CartState {
	return s.cart.UpdateQuantity(ctx, id, quantity)
}

func (s *service) RemoveItem(ctx context.Context, id string) *models.CartState {
	return s.cart.RemoveItem(ctx, id)
}

func (s *service) ClearCart(ctx context.Context) *models.CartState {
	return s.cart.Clear(ctx)
}

func (s *service) Cart() *models.CartState {
	return s.cart.State()
}

func (s *service) Summary() cart.Summary {
	return s.pricing.Summarize(s.cart.State())
}

// Login stores the credentials in the auth partition. The token is opaque
// here; the backend enforces it.
func (s *service) Login(ctx context.Context, user json.RawMessage, token string) error {
	s.mu.Lock()
	s.session = models.Session{
		User:          user,
		Token:         token,
		Authenticated: true,
	}
	session := s.session
	s.mu.Unlock()

	if err := s.persist.Save(ctx, s.scope, persist.PartitionAuth, session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Logout drops the credentials and empties the cart, deleting both
// partitions from the persistent store.
func (s *service) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = models.Session{}
	s.mu.Unlock()

	s.cart.Clear(ctx)

	if err := s.persist.Delete(ctx, s.scope, persist.PartitionAuth); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.persist.Delete(ctx, s.scope, persist.PartitionCart); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

func (s *service) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *service) Checkout(ctx context.Context, address models.ShippingAddress, method enum.PaymentMethod) (*models.OrderDraft, error) {
	draft, err := s.checkout.Submit(ctx, address, method)
	if err != nil {
		return nil, err
	}

	s.eventManager.PublishOrderSubmitted(draft)
	return draft, nil
}

func (s *service) Shutdown() {
	s.workerPool.Shutdown()
}

func (s *service) hydrateSession(ctx context.Context) {
	var session models.Session
	if err := s.persist.Load(ctx, s.scope, persist.PartitionAuth, &session); err == nil {
		s.session = session
	}
}

// ProcessEvent dispatches one gateway event. Events with no registered
// handler are ignored; duplicate deliveries are handled once.
func (s *service) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	if s.eventManager.alreadyProcessed(event.ID) {
		s.logger.Debug("Skipping already processed event", zap.String("event_id", event.ID))
		return nil
	}

	handler, ok := s.eventManager.GetHandler(event.Type)
	if !ok {
		return nil
	}

	if err := handler(ctx, event); err != nil {
		return err
	}

	s.eventManager.markProcessed(event.ID)
	return nil
}

func (s *service) registerEventHandlers() {
	eventHandlers := map[stripe.EventType]EventHandler{
		stripe.EventTypePaymentIntentSucceeded:     s.handlePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed: s.handlePaymentIntentPaymentFailed,
		stripe.EventTypePaymentIntentCanceled:      s.handlePaymentIntentCanceled,
		stripe.EventTypeCheckoutSessionCompleted:   s.handleCheckoutSessionCompleted,
	}

	for eventType, handler := range eventHandlers {
		s.eventManager.RegisterHandler(eventType, handler)
	}
}

func (s *service) handlePaymentIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	s.logger.Info("Handling PaymentIntent succeeded event", zap.String("event_id", event.ID))

	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		s.logger.Error("Failed to unmarshal PaymentIntent", zap.Error(err))
		return err
	}

	s.checkout.ConfirmByPaymentIntent(ctx, paymentIntent.ID)
	return nil
}

func (s *service) handlePaymentIntentPaymentFailed(ctx context.Context, event *stripe.Event) error {
	s.logger.Info("Handling PaymentIntent payment failed event", zap.String("event_id", event.ID))

	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		s.logger.Error("Failed to unmarshal PaymentIntent", zap.Error(err))
		return err
	}

	s.checkout.FailByPaymentIntent(paymentIntent.ID, enum.OrderStatusFailed)
	return nil
}

func (s *service) handlePaymentIntentCanceled(ctx context.Context, event *stripe.Event) error {
	s.logger.Info("Handling PaymentIntent canceled event", zap.String("event_id", event.ID))

	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		s.logger.Error("Failed to unmarshal PaymentIntent", zap.Error(err))
		return err
	}

	s.checkout.FailByPaymentIntent(paymentIntent.ID, enum.OrderStatusCancelled)
	return nil
}

func (s *service) handleCheckoutSessionCompleted(ctx context.Context, event *stripe.Event) error {
	s.logger.Info("Handling Checkout Session completed event", zap.String("event_id", event.ID))

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logger.Error("Failed to unmarshal Checkout Session", zap.Error(err))
		return err
	}

	if session.PaymentIntent == nil {
		return nil
	}

	s.checkout.ConfirmByPaymentIntent(ctx, session.PaymentIntent.ID)
	return nil
}
