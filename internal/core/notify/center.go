// Package notify collects transient user-visible notifications (toasts).
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

const defaultCapacity = 50

// Center buffers the latest notifications until the UI drains them. When the
// buffer is full the oldest entry is dropped.
type Center struct {
	mu       sync.Mutex
	pending  []domain.Notification
	capacity int
	now      func() time.Time
	log      zerolog.Logger
	onPush   func(domain.NotificationLevel)
}

// NewCenter returns a Center keeping at most capacity entries (defaultCapacity
// when capacity <= 0).
func NewCenter(capacity int, log zerolog.Logger) *Center {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Center{
		capacity: capacity,
		now:      time.Now,
		log:      log.With().Str("component", "notify").Logger(),
	}
}

// OnPush registers a hook called for every notification (metrics).
func (c *Center) OnPush(fn func(domain.NotificationLevel)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPush = fn
}

func (c *Center) Success(msg string) { c.push(domain.LevelSuccess, msg) }
func (c *Center) Error(msg string)   { c.push(domain.LevelError, msg) }
func (c *Center) Info(msg string)    { c.push(domain.LevelInfo, msg) }

// Drain returns the pending notifications oldest first and clears them.
func (c *Center) Drain() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}

func (c *Center) push(level domain.NotificationLevel, msg string) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: c.now().UTC(),
	}

	c.mu.Lock()
	if len(c.pending) >= c.capacity {
		c.pending = c.pending[1:]
	}
	c.pending = append(c.pending, n)
	hook := c.onPush
	c.mu.Unlock()

	if hook != nil {
		hook(level)
	}
	c.log.Debug().Str("level", string(level)).Str("message", msg).Msg("notification")
}
