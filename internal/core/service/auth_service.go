package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
	"github.com/99minutos/marketplace-console/internal/core/session"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

// AuthService implements sign-in, sign-up and sign-out against the backend
// and keeps the session store in step.
type AuthService struct {
	api       ports.MarketplaceAPI
	store     *session.Store
	cache     *query.Cache
	notifier  ports.Notifier
	validator *validation.Validator
	log       zerolog.Logger

	// epoch increments on every login attempt; bootstrap results carrying an
	// older epoch are discarded.
	epoch   atomic.Uint64
	inLogin atomic.Int32
	// sessionMu orders login's session writes against the bootstrap's
	// epoch check and the write that follows it.
	sessionMu sync.Mutex
}

func NewAuthService(
	api ports.MarketplaceAPI,
	store *session.Store,
	cache *query.Cache,
	notifier ports.Notifier,
	validator *validation.Validator,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		api:       api,
		store:     store,
		cache:     cache,
		notifier:  notifier,
		validator: validator,
		log:       log.With().Str("component", "auth").Logger(),
	}
}

// Login validates the form, exchanges the credentials for a token, stores it
// and then resolves the user behind it.
func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) (*domain.User, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}

	s.inLogin.Add(1)
	defer s.inLogin.Add(-1)
	s.epoch.Add(1)

	tok, err := s.api.Login(ctx, domain.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		s.notifier.Error(domain.Detail(err, "Login failed"))
		return nil, fmt.Errorf("login: %w", err)
	}

	// The new token may belong to someone else: drop the previous user and
	// everything fetched under it before switching.
	s.sessionMu.Lock()
	s.Logout(ctx)
	s.store.SetToken(ctx, tok.AccessToken)
	s.sessionMu.Unlock()

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.notifier.Error("Failed to get user data")
		return nil, fmt.Errorf("login: current user: %w", err)
	}

	s.store.SetUser(user)
	s.cache.Invalidate(query.KeyCurrentUser)
	s.notifier.Success("Login successful!")
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("signed in")
	return user, nil
}

// Register creates an account. The user still has to sign in afterwards.
func (s *AuthService) Register(ctx context.Context, form validation.RegisterForm) error {
	if err := s.validator.Struct(form); err != nil {
		return err
	}
	role, err := domain.ParseRole(form.Role)
	if err != nil {
		return err
	}

	_, err = s.api.Register(ctx, domain.Registration{
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
		Role:     role,
	})
	if err != nil {
		s.notifier.Error(domain.Detail(err, "Registration failed"))
		return fmt.Errorf("register: %w", err)
	}

	s.notifier.Success("Registration successful! Please log in.")
	s.log.Info().Str("username", form.Username).Str("role", form.Role).Msg("registered")
	return nil
}

// Logout clears the session and everything fetched under it.
func (s *AuthService) Logout(ctx context.Context) {
	s.store.Logout(ctx)
	s.cache.Reset()
}

// HandleError signs the user out when err says the token is no longer
// accepted. It returns err unchanged so callers can wrap it inline.
func (s *AuthService) HandleError(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, domain.ErrUnauthorized) {
		s.log.Info().Err(err).Msg("token rejected, signing out")
		s.Logout(ctx)
	}
	return err
}

// loginEpoch and loginInProgress let the bootstrapper step aside for a login.
func (s *AuthService) loginEpoch() uint64 { return s.epoch.Load() }

// commitIfCurrent runs write only when no login started since epoch was
// read. The check and the write happen under the lock login takes for its
// own session writes.
func (s *AuthService) commitIfCurrent(epoch uint64, write func()) bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if s.epoch.Load() != epoch {
		return false
	}
	write()
	return true
}

func (s *AuthService) loginInProgress() bool { return s.inLogin.Load() > 0 }
