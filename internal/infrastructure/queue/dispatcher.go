package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
)

// Dispatcher hands realtime order events to a fixed set of workers. Events
// of the same order always land on the same worker and keep their order.
type Dispatcher struct {
	workers []chan domain.OrderEvent
	handler ports.OrderEventHandler
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers, or
// defaultWorkers when numWorkers <= 0.
func NewDispatcher(numWorkers int, handler ports.OrderEventHandler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.OrderEvent, numWorkers),
		handler: handler,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderEvent, channelBuffer)
	}
	return d
}

// Start launches the workers. They stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue queues an event, blocking while its worker's buffer is full or
// until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, event domain.OrderEvent) error {
	select {
	case d.workers[d.shardIndex(event)] <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an event to a worker by order id. Events without an id
// go to worker 0.
func (d *Dispatcher) shardIndex(event domain.OrderEvent) int {
	id, ok := event.OrderID()
	if !ok {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(id, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.handler.Handle(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("type", event.Type).
					Int("worker_id", id).
					Msg("order event handling failed")
			}
		}
	}
}
