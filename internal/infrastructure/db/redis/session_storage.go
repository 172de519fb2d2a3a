package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// Fixed record names with no per-user suffix: one console holds one
// session.
const (
	TokenKey   = "access_token"
	SessionKey = "auth-storage"

	sessionVersion = 0
)

// sessionEnvelope is the stored shape of the {user, token} pair.
// Key format: auth-storage → {"state":{"user":...,"token":...},"version":0}
type sessionEnvelope struct {
	State   domain.PersistedSession `json:"state"`
	Version int                     `json:"version"`
}

// SessionStorage persists the session records in Redis without expiry.
type SessionStorage struct {
	client *redis.Client
	prefix string
}

// NewSessionStorage wraps client. prefix is prepended to both keys so several
// consoles can share a Redis database; it may be empty.
func NewSessionStorage(client *redis.Client, prefix string) *SessionStorage {
	return &SessionStorage{client: client, prefix: prefix}
}

func (s *SessionStorage) SaveToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key(TokenKey), token, 0).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SessionStorage) LoadToken(ctx context.Context) (string, error) {
	tok, err := s.client.Get(ctx, s.key(TokenKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return tok, nil
}

func (s *SessionStorage) DeleteToken(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(TokenKey)).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *SessionStorage) SaveSession(ctx context.Context, rec domain.PersistedSession) error {
	raw, err := json.Marshal(sessionEnvelope{State: rec, Version: sessionVersion})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(SessionKey), raw, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) LoadSession(ctx context.Context) (domain.PersistedSession, error) {
	raw, err := s.client.Get(ctx, s.key(SessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PersistedSession{}, nil
	}
	if err != nil {
		return domain.PersistedSession{}, fmt.Errorf("load session: %w", err)
	}
	var env sessionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.PersistedSession{}, fmt.Errorf("decode session: %w", err)
	}
	return env.State, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(SessionKey)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStorage) key(name string) string {
	return s.prefix + name
}
