package storefront

import (
	"context"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *stripe.Event) error
}

// WorkerPool fans gateway events out to a fixed set of workers. Processing
// failures are logged; the event bus handles redelivery.
type WorkerPool struct {
	tasks     chan *stripe.Event
	wg        sync.WaitGroup
	processor EventProcessor
	logger    *zap.Logger
}

func NewWorkerPool(size int, processor EventProcessor, logger *zap.Logger) *WorkerPool {
	wp := &WorkerPool{
		tasks:     make(chan *stripe.Event, 1000),
		processor: processor,
		logger:    logger,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for event := range wp.tasks {
		if err := wp.processor.ProcessEvent(context.Background(), event); err != nil {
			wp.logger.Error("Failed to process event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID))
		}
	}
}

func (wp *WorkerPool) Submit(ctx context.Context, event *stripe.Event) {
	select {
	case wp.tasks <- event:
	case <-ctx.Done():
		wp.logger.Warn("Dropped event, submit cancelled", zap.String("event_id", event.ID))
	}
}

// Shutdown stops accepting events and waits for in-flight work to drain.
func (wp *WorkerPool) Shutdown() {
	close(wp.tasks)
	wp.wg.Wait()
}
