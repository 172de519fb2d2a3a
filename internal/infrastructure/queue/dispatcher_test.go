package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

type recordingHandler struct {
	mu     sync.Mutex
	seen   []domain.OrderEvent
	done   chan struct{}
	expect int
	err    error
}

func newRecordingHandler(expect int) *recordingHandler {
	return &recordingHandler{done: make(chan struct{}), expect: expect}
}

func (h *recordingHandler) Handle(_ context.Context, e domain.OrderEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e)
	if len(h.seen) == h.expect {
		close(h.done)
	}
	return h.err
}

func (h *recordingHandler) wait(t *testing.T) []domain.OrderEvent {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.OrderEvent(nil), h.seen...)
}

func event(typ string, id int64) domain.OrderEvent {
	return domain.OrderEvent{Type: typ, Data: map[string]any{"id": float64(id)}}
}

func TestDispatcher_KeepsPerOrderSequence(t *testing.T) {
	h := newRecordingHandler(3)
	d := NewDispatcher(4, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	require.NoError(t, d.Enqueue(ctx, event(domain.EventNewOrder, 42)))
	require.NoError(t, d.Enqueue(ctx, event(domain.EventOrderAccepted, 42)))
	require.NoError(t, d.Enqueue(ctx, event(domain.EventPaymentStatus, 42)))

	got := h.wait(t)
	assert.Equal(t, []string{domain.EventNewOrder, domain.EventOrderAccepted, domain.EventPaymentStatus},
		[]string{got[0].Type, got[1].Type, got[2].Type})
}

func TestDispatcher_HandlerErrorsDoNotStopWorker(t *testing.T) {
	h := newRecordingHandler(2)
	h.err = errors.New("boom")
	d := NewDispatcher(1, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	require.NoError(t, d.Enqueue(ctx, event(domain.EventNewOrder, 1)))
	require.NoError(t, d.Enqueue(ctx, domain.OrderEvent{Type: "connection"}))

	assert.Len(t, h.wait(t), 2)
}

func TestDispatcher_ShardIndex(t *testing.T) {
	d := NewDispatcher(0, newRecordingHandler(0), zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)

	assert.Equal(t, 0, d.shardIndex(domain.OrderEvent{Type: "connection"}))
	first := d.shardIndex(event(domain.EventNewOrder, 7))
	assert.Equal(t, first, d.shardIndex(event(domain.EventPaymentStatus, 7)))
	assert.Less(t, first, defaultWorkers)
}

func TestDispatcher_EnqueueRespectsContext(t *testing.T) {
	d := NewDispatcher(1, newRecordingHandler(0), zerolog.Nop())
	// Not started: fill the buffer so the next send blocks.
	for i := 0; i < channelBuffer; i++ {
		require.NoError(t, d.Enqueue(context.Background(), event(domain.EventNewOrder, 1)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Enqueue(ctx, event(domain.EventNewOrder, 1)), context.DeadlineExceeded)
}
