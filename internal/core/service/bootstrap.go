package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/session"
)

// ErrTokenExpired is reported when a persisted JWT is past its exp claim.
var ErrTokenExpired = errors.New("persisted token expired")

// BootstrapResult says what the resume procedure did.
type BootstrapResult string

const (
	BootstrapNoToken    BootstrapResult = "no_token"
	BootstrapCachedUser BootstrapResult = "cached_user"
	BootstrapResumed    BootstrapResult = "resumed"
	BootstrapRejected   BootstrapResult = "rejected"
	BootstrapSuperseded BootstrapResult = "superseded"
	BootstrapSkipped    BootstrapResult = "skipped"
)

// Bootstrapper resumes a persisted session when the console starts. It runs
// at most once per process and never retries.
type Bootstrapper struct {
	api   ports.MarketplaceAPI
	store *session.Store
	auth  *AuthService
	log   zerolog.Logger
	now   func() time.Time
	once  sync.Once
}

func NewBootstrapper(api ports.MarketplaceAPI, store *session.Store, auth *AuthService, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{
		api:   api,
		store: store,
		auth:  auth,
		log:   log.With().Str("component", "bootstrap").Logger(),
		now:   time.Now,
	}
}

// Run restores the persisted session and, when a token exists without a
// cached user, asks the backend who it belongs to. While that request is
// outstanding the session is flagged loading so the route guard waits
// instead of redirecting. Calls after the first return BootstrapSkipped.
func (b *Bootstrapper) Run(ctx context.Context) (BootstrapResult, error) {
	result, err := BootstrapSkipped, error(nil)
	b.once.Do(func() {
		result, err = b.run(ctx)
	})
	return result, err
}

func (b *Bootstrapper) run(ctx context.Context) (BootstrapResult, error) {
	b.store.SetLoading(true)
	defer b.store.SetLoading(false)

	b.store.Restore(ctx)
	snap := b.store.Snapshot()

	if snap.Token == "" {
		return BootstrapNoToken, nil
	}
	if snap.User != nil {
		return BootstrapCachedUser, nil
	}
	// Capture the epoch before looking at loginInProgress; Login bumps them in
	// the opposite order, so any overlapping login is caught by one check.
	epoch := b.auth.loginEpoch()
	if b.auth.loginInProgress() {
		return BootstrapSuperseded, nil
	}

	if expired, known := tokenExpired(snap.Token, b.now()); known && expired {
		b.store.ForgetToken(ctx)
		b.log.Info().Msg("persisted token expired, discarded")
		return BootstrapRejected, ErrTokenExpired
	}

	user, err := b.api.CurrentUser(ctx)

	committed := b.auth.commitIfCurrent(epoch, func() {
		if err != nil {
			b.store.ForgetToken(ctx)
			return
		}
		b.store.SetUser(user)
	})
	if !committed {
		b.log.Debug().Msg("login started during bootstrap, result ignored")
		return BootstrapSuperseded, nil
	}
	if err != nil {
		b.log.Info().Err(err).Msg("persisted token rejected")
		return BootstrapRejected, fmt.Errorf("resume session: %w", err)
	}

	b.log.Info().Str("username", user.Username).Msg("session resumed")
	return BootstrapResumed, nil
}

// Resumed is a convenience for callers that only care about the session.
func Resumed(r BootstrapResult) bool {
	return r == BootstrapResumed || r == BootstrapCachedUser
}
