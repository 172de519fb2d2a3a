// Package memory provides a process-local SessionStorage. It is used when no
// Redis address is configured and by tests; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// SessionStorage keeps both session records in memory.
type SessionStorage struct {
	mu      sync.Mutex
	token   string
	hasRec  bool
	record  domain.PersistedSession
	failErr error
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{}
}

// FailWith makes every subsequent call return err (nil restores normal
// behaviour).
func (m *SessionStorage) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *SessionStorage) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.token = token
	return nil
}

func (m *SessionStorage) LoadToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", m.failErr
	}
	return m.token, nil
}

func (m *SessionStorage) DeleteToken(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.token = ""
	return nil
}

func (m *SessionStorage) SaveSession(_ context.Context, rec domain.PersistedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.record = domain.PersistedSession{User: rec.User.Clone()}
	if rec.Token != nil {
		tok := *rec.Token
		m.record.Token = &tok
	}
	m.hasRec = true
	return nil
}

func (m *SessionStorage) LoadSession(_ context.Context) (domain.PersistedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return domain.PersistedSession{}, m.failErr
	}
	if !m.hasRec {
		return domain.PersistedSession{}, nil
	}
	out := domain.PersistedSession{User: m.record.User.Clone()}
	if m.record.Token != nil {
		tok := *m.record.Token
		out.Token = &tok
	}
	return out, nil
}

func (m *SessionStorage) DeleteSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.record = domain.PersistedSession{}
	m.hasRec = false
	return nil
}

// HasToken reports whether either record still carries a token.
func (m *SessionStorage) HasToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" || (m.hasRec && m.record.Token != nil && *m.record.Token != "")
}
