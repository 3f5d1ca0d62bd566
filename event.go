package storefront

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

// paymentEventSubject is where the payment service republishes gateway
// webhooks.
const paymentEventSubject = "payment.service.event.>"

// orderSubmittedSubject announces drafts handed to the backend.
const orderSubmittedSubject = "storefront.order.submitted"

type EventHandler func(context.Context, *stripe.Event) error

// EventManager routes payment gateway events to their handlers and keeps a
// processed-id set so a redelivered event is handled once.
type EventManager struct {
	natsConn *nats.Conn
	handlers map[stripe.EventType]EventHandler
	logger   *zap.Logger

	mu        sync.Mutex
	processed map[string]struct{}
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn:  natsConn,
		handlers:  make(map[stripe.EventType]EventHandler),
		processed: make(map[string]struct{}),
		logger:    logger,
	}
}

func (em *EventManager) RegisterHandler(eventType stripe.EventType, handler EventHandler) {
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType stripe.EventType) (EventHandler, bool) {
	handler, exists := em.handlers[eventType]
	return handler, exists
}

func (em *EventManager) SubscribeToEvents(wp *WorkerPool) error {
	_, err := em.natsConn.Subscribe(paymentEventSubject, func(msg *nats.Msg) {
		var event stripe.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			em.logger.Error("Failed to unmarshal event", zap.Error(err))
			return
		}

		wp.Submit(context.Background(), &event)
	})

	return err
}

// PublishOrderSubmitted announces a submitted draft on the bus. Best effort:
// failures are logged, the submission already succeeded.
func (em *EventManager) PublishOrderSubmitted(payload any) {
	if em.natsConn == nil {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		em.logger.Error("Failed to marshal order submitted event", zap.Error(err))
		return
	}
	if err = em.natsConn.Publish(orderSubmittedSubject, b); err != nil {
		em.logger.Error("Failed to publish order submitted event", zap.Error(err))
	}
}

func (em *EventManager) alreadyProcessed(id string) bool {
	em.mu.Lock()
	defer em.mu.Unlock()
	_, seen := em.processed[id]
	return seen
}

// markProcessed records the event id once its handler has succeeded, so a
// redelivery after a failure still gets retried.
func (em *EventManager) markProcessed(id string) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.processed[id] = struct{}{}
}
