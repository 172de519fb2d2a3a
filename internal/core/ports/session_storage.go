package ports

import (
	"context"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// SessionStorage is the durable key-value slot that survives restarts.
// It holds two fixed records: the plain access token and the {user, token}
// pair. There is no per-user namespacing.
type SessionStorage interface {
	SaveToken(ctx context.Context, token string) error
	// LoadToken returns "" when no token is stored.
	LoadToken(ctx context.Context) (string, error)
	DeleteToken(ctx context.Context) error

	SaveSession(ctx context.Context, rec domain.PersistedSession) error
	// LoadSession returns a zero record when nothing is stored.
	LoadSession(ctx context.Context) (domain.PersistedSession, error)
	DeleteSession(ctx context.Context) error
}

// Notifier publishes transient user-visible messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}
