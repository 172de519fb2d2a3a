package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// newTestStorage connects to REDIS_ADDR and isolates the test under a random
// prefix. Tests are skipped when no Redis is available.
func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr})
	require.NoError(t, err)

	s := NewSessionStorage(client, "test:"+uuid.NewString()+":")
	t.Cleanup(func() {
		_ = s.DeleteToken(context.Background())
		_ = s.DeleteSession(context.Background())
		_ = client.Close()
	})
	return s
}

func TestSessionStorage_Token(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tok, err := s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SaveToken(ctx, "abc"))
	tok, err = s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.DeleteToken(ctx))
	tok, err = s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSessionStorage_SessionEnvelope(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	token := "abc"
	user := &domain.User{ID: 4, Username: "dana", Email: "dana@example.com", Role: domain.RoleWorker, Active: true}
	require.NoError(t, s.SaveSession(ctx, domain.PersistedSession{User: user, Token: &token}))

	raw, err := s.client.Get(ctx, s.key(SessionKey)).Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"user":{"id":4,"email":"dana@example.com","username":"dana","role":"worker","is_active":true,"created_at":"0001-01-01T00:00:00Z"},"token":"abc"},"version":0}`, raw)

	rec, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec.User)
	assert.Equal(t, "dana", rec.User.Username)
	assert.Equal(t, "abc", *rec.Token)

	require.NoError(t, s.DeleteSession(ctx))
	rec, err = s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec.User)
}
