// Package session holds the console's single source of truth for "who is
// signed in": the cached user, the bearer token and the derived
// authenticated flag. Token and user are written through to durable storage
// so a restarted console can resume the session.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
)

const subscriberBuffer = 8

// Store is the session state container. Construct one per console (tests
// build a fresh one per case) and pass it to whatever needs it.
//
// Every mutator is last-write-wins; there is no versioning.
type Store struct {
	mu            sync.RWMutex
	user          *domain.User
	token         string
	authenticated bool
	loading       bool

	// persistMu keeps the in-memory update and its storage write in the same
	// order across concurrent callers.
	persistMu sync.Mutex
	storage   ports.SessionStorage
	log       zerolog.Logger

	subMu   sync.Mutex
	subs    map[int]chan domain.Session
	nextSub int
}

// NewStore returns an empty session backed by storage.
func NewStore(storage ports.SessionStorage, log zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		log:     log.With().Str("component", "session").Logger(),
		subs:    make(map[int]chan domain.Session),
	}
}

// SetUser replaces the cached user and marks the session authenticated.
// A nil user is ignored.
func (s *Store) SetUser(user *domain.User) {
	if user == nil {
		return
	}
	s.mu.Lock()
	s.user = user.Clone()
	s.authenticated = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// SetToken replaces the token and writes it through to storage. It does not
// authenticate the session on its own; that waits for SetUser.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.token = token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.storage.SaveToken(ctx, token); err != nil {
		s.log.Warn().Err(err).Msg("persist access token failed")
	}
	tok := token
	if err := s.storage.SaveSession(ctx, domain.PersistedSession{User: snap.User, Token: &tok}); err != nil {
		s.log.Warn().Err(err).Msg("persist session record failed")
	}

	s.publish(snap)
}

// Logout clears user, token and the authenticated flag and erases the
// persisted records. Calling it on an empty session is harmless.
func (s *Store) Logout(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.erase(ctx)
	s.log.Debug().Msg("session cleared")
	s.publish(snap)
}

// ForgetToken erases the persisted token after the backend rejected it. The
// in-memory token is dropped too; an in-memory user, if any, is kept.
func (s *Store) ForgetToken(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.token = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.erase(ctx)
	s.publish(snap)
}

// SetLoading flags an outstanding identity check. Never persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Restore rehydrates user and token from storage. The pair record wins; the
// plain access token record is the fallback for the token. A restored user
// makes the session authenticated again, since that flag is derived.
func (s *Store) Restore(ctx context.Context) {
	rec, err := s.storage.LoadSession(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load session record failed")
	}
	token := ""
	if rec.Token != nil {
		token = *rec.Token
	}
	if token == "" {
		token, err = s.storage.LoadToken(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("load access token failed")
		}
	}

	s.mu.Lock()
	if token != "" && s.token == "" {
		s.token = token
	}
	if rec.User != nil && s.user == nil {
		s.user = rec.User.Clone()
		s.authenticated = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug().
		Bool("has_token", snap.Token != "").
		Bool("has_user", snap.User != nil).
		Msg("session restored")
	s.publish(snap)
}

// HasRole reports whether a user is present and holds exactly role.
// There is no hierarchy: an admin does not satisfy a worker check.
func (s *Store) HasRole(role domain.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == role
}

// HasAnyRole reports whether a user is present and its role is in roles.
// An empty set never matches.
func (s *Store) HasAnyRole(roles ...domain.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	for _, r := range roles {
		if s.user.Role == r {
			return true
		}
	}
	return false
}

// User returns a copy of the cached user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Token satisfies ports.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Snapshot returns a consistent copy of the whole session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers for change notifications. Sends never block: a
// subscriber whose buffer is full misses that change. Call cancel to stop.
func (s *Store) Subscribe() (<-chan domain.Session, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Session, subscriberBuffer)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if ch, ok := s.subs[id]; ok {
			close(ch)
			delete(s.subs, id)
		}
	}
	return ch, cancel
}

func (s *Store) snapshotLocked() domain.Session {
	return domain.Session{
		User:          s.user.Clone(),
		Token:         s.token,
		Authenticated: s.authenticated,
		Loading:       s.loading,
	}
}

func (s *Store) erase(ctx context.Context) {
	if err := s.storage.DeleteToken(ctx); err != nil {
		s.log.Warn().Err(err).Msg("erase access token failed")
	}
	if err := s.storage.DeleteSession(ctx); err != nil {
		s.log.Warn().Err(err).Msg("erase session record failed")
	}
}

func (s *Store) publish(snap domain.Session) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
