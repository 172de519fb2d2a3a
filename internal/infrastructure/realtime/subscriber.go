// Package realtime keeps a websocket open to the backend's order event feed
// while a user is signed in.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/api/metrics"
	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/session"
)

// CloseAuthFailed is the close code the backend sends when it rejects the
// token in the socket path.
const CloseAuthFailed = 4001

const (
	defaultMinBackoff = time.Second
	defaultMaxBackoff = 30 * time.Second
	closeGrace        = time.Second
)

var errTokenRejected = errors.New("realtime: token rejected")

// Sink receives decoded events. queue.Dispatcher satisfies it.
type Sink interface {
	Enqueue(ctx context.Context, event domain.OrderEvent) error
}

type Options struct {
	// URL is the websocket base, e.g. ws://host/api.
	URL        string
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Dialer     *websocket.Dialer
}

// Subscriber follows the session: it connects when a user signs in, drops
// the connection on logout or token change and reconnects with exponential
// backoff after failures.
type Subscriber struct {
	base       string
	minBackoff time.Duration
	maxBackoff time.Duration
	dialer     *websocket.Dialer
	store      *session.Store
	sink       Sink
	log        zerolog.Logger
}

func NewSubscriber(opts Options, store *session.Store, sink Sink, log zerolog.Logger) (*Subscriber, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("realtime: parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("realtime: url %q must be ws or wss", opts.URL)
	}

	s := &Subscriber{
		base:       strings.TrimRight(opts.URL, "/"),
		minBackoff: opts.MinBackoff,
		maxBackoff: opts.MaxBackoff,
		dialer:     opts.Dialer,
		store:      store,
		sink:       sink,
		log:        log.With().Str("component", "realtime").Logger(),
	}
	if s.minBackoff <= 0 {
		s.minBackoff = defaultMinBackoff
	}
	if s.maxBackoff < s.minBackoff {
		s.maxBackoff = max(defaultMaxBackoff, s.minBackoff)
	}
	if s.dialer == nil {
		s.dialer = websocket.DefaultDialer
	}
	return s, nil
}

// URLFromAPI derives the websocket base from the REST base URL.
func URLFromAPI(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("realtime: cannot derive websocket url from %q", apiBase)
	}
	return u.String(), nil
}

// Run blocks until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	updates, cancel := s.store.Subscribe()
	defer cancel()

	backoff := s.minBackoff
	rejected := ""
	for {
		snap := s.store.Snapshot()
		if !snap.Authenticated || snap.Token == "" || snap.Token == rejected {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-updates:
				continue
			}
		}

		connected, err := s.connect(ctx, snap.Token, updates)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = s.minBackoff
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, errTokenRejected):
			s.log.Warn().Msg("order events refused the session token")
			rejected = snap.Token
			continue
		}

		s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("order events connection lost")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, s.maxBackoff)
	}
}

// connect holds one connection for token. It returns a nil error when the
// session moved on and the connection was closed on purpose.
func (s *Subscriber) connect(ctx context.Context, token string, updates <-chan domain.Session) (bool, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.base+"/ws/auth/"+url.PathEscape(token), nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	metrics.RealtimeConnected.Set(1)
	defer metrics.RealtimeConnected.Set(0)
	s.log.Info().Msg("order events connected")

	done := make(chan struct{})
	defer close(done)
	events := make(chan domain.OrderEvent)
	readErr := make(chan error, 1)
	go s.read(conn, events, readErr, done)

	for {
		select {
		case <-ctx.Done():
			s.close(conn)
			return true, nil
		case snap := <-updates:
			if !snap.Authenticated || snap.Token != token {
				s.close(conn)
				s.log.Info().Msg("order events disconnected, session changed")
				return true, nil
			}
		case ev := <-events:
			metrics.RealtimeEventsTotal.WithLabelValues(ev.Type).Inc()
			if err := s.sink.Enqueue(ctx, ev); err != nil {
				return true, nil
			}
		case err := <-readErr:
			if websocket.IsCloseError(err, CloseAuthFailed) {
				return true, errTokenRejected
			}
			return true, fmt.Errorf("read: %w", err)
		}
	}
}

func (s *Subscriber) read(conn *websocket.Conn, events chan<- domain.OrderEvent, readErr chan<- error, done <-chan struct{}) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		var ev domain.OrderEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.log.Debug().Err(err).Msg("non-JSON frame skipped")
			continue
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (s *Subscriber) close(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
}
