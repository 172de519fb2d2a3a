package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
)

var _ ports.OrderEventHandler = (*OrderEvents)(nil)

// OrderEvents turns realtime order events into notifications and marks the
// orders list stale.
type OrderEvents struct {
	cache    *query.Cache
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewOrderEvents(cache *query.Cache, notifier ports.Notifier, log zerolog.Logger) *OrderEvents {
	return &OrderEvents{
		cache:    cache,
		notifier: notifier,
		log:      log.With().Str("component", "order_events").Logger(),
	}
}

func (h *OrderEvents) Handle(_ context.Context, event domain.OrderEvent) error {
	msg, ok := eventMessage(event)
	if !ok {
		h.log.Debug().Str("type", event.Type).Str("message", event.Message).Msg("event ignored")
		return nil
	}
	h.cache.Invalidate(query.KeyOrders)
	h.notifier.Info(msg)
	return nil
}

func eventMessage(e domain.OrderEvent) (string, bool) {
	id, _ := e.OrderID()
	switch e.Type {
	case domain.EventNewOrder:
		if name := e.Field("service_name"); name != "" {
			return fmt.Sprintf("New order #%d for %s", id, name), true
		}
		return fmt.Sprintf("New order #%d", id), true
	case domain.EventOrderAccepted:
		if worker := e.Field("worker_username"); worker != "" {
			return fmt.Sprintf("Order #%d accepted by %s", id, worker), true
		}
		return fmt.Sprintf("Order #%d accepted", id), true
	case domain.EventPaymentStatus:
		return fmt.Sprintf("Payment for order #%d: %s", id, e.Field("status")), true
	}
	return "", false
}
