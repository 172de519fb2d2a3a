package ports

import (
	"context"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// OrderEventHandler reacts to realtime order events.
type OrderEventHandler interface {
	Handle(ctx context.Context, event domain.OrderEvent) error
}
