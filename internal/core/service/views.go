package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
	"github.com/99minutos/marketplace-console/internal/core/session"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

const recentLimit = 5

const (
	emptyFiltered = "Try adjusting your search or filters"
	emptyServices = "No services are currently available"
	emptyOrders   = "No orders are currently available"
)

// Views implements every page view of the console. The views share the
// session, the query cache and the notifier.
type Views struct {
	api       ports.MarketplaceAPI
	store     *session.Store
	cache     *query.Cache
	notifier  ports.Notifier
	auth      *AuthService
	validator *validation.Validator
	log       zerolog.Logger
}

var (
	_ ports.DashboardView = (*Views)(nil)
	_ ports.ServicesView  = (*Views)(nil)
	_ ports.OrdersView    = (*Views)(nil)
	_ ports.ProfileView   = (*Views)(nil)
	_ ports.AdminView     = (*Views)(nil)
)

func NewViews(
	api ports.MarketplaceAPI,
	store *session.Store,
	cache *query.Cache,
	notifier ports.Notifier,
	auth *AuthService,
	validator *validation.Validator,
	log zerolog.Logger,
) *Views {
	return &Views{
		api:       api,
		store:     store,
		cache:     cache,
		notifier:  notifier,
		auth:      auth,
		validator: validator,
		log:       log.With().Str("component", "views").Logger(),
	}
}

// currentUser returns the signed-in user or ErrUnauthorized.
func (v *Views) currentUser() (*domain.User, error) {
	u := v.store.User()
	if u == nil {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

// requireRole fails with ErrForbidden unless the user holds one of roles.
func (v *Views) requireRole(roles ...domain.Role) error {
	if _, err := v.currentUser(); err != nil {
		return err
	}
	if !v.store.HasAnyRole(roles...) {
		return domain.ErrForbidden
	}
	return nil
}

// mutate runs a write, reports the outcome as a notification and invalidates
// the affected collections on success. Nothing local changes on failure.
func (v *Views) mutate(ctx context.Context, name, success, failure string, fn func(context.Context) error, invalidate ...string) error {
	if err := fn(ctx); err != nil {
		v.notifier.Error(domain.Detail(err, failure))
		v.log.Warn().Err(err).Str("mutation", name).Msg("mutation failed")
		return fmt.Errorf("%s: %w", name, v.auth.HandleError(ctx, err))
	}
	v.cache.Invalidate(invalidate...)
	v.notifier.Success(success)
	v.log.Info().Str("mutation", name).Msg("mutation succeeded")
	return nil
}

func (v *Views) orders(ctx context.Context) ([]domain.OrderWithDetails, error) {
	out, err := query.Fetch(ctx, v.cache, query.KeyOrders, v.api.ListOrders)
	return out, v.auth.HandleError(ctx, err)
}

func (v *Views) services(ctx context.Context) ([]domain.Service, error) {
	out, err := query.Fetch(ctx, v.cache, query.KeyServices, v.api.ListServices)
	return out, v.auth.HandleError(ctx, err)
}

func (v *Views) servicesByCategory(ctx context.Context, category string) ([]domain.Service, error) {
	out, err := query.Fetch(ctx, v.cache, query.ServicesByCategory(category), func(ctx context.Context) ([]domain.Service, error) {
		return v.api.ListServicesByCategory(ctx, category)
	})
	return out, v.auth.HandleError(ctx, err)
}

func (v *Views) users(ctx context.Context) ([]domain.User, error) {
	out, err := query.Fetch(ctx, v.cache, query.KeyUsers, v.api.ListUsers)
	return out, v.auth.HandleError(ctx, err)
}

func orderRows(orders []domain.OrderWithDetails, viewer *domain.User) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, OrderRow{
			OrderWithDetails: o,
			StatusBadge:      o.Status.Badge(),
			Actions:          o.Actions(viewer),
		})
	}
	return rows
}

func userRows(users []domain.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{
			User:          u,
			RoleBadge:     domain.Badge{Label: u.Role.Label(), Tone: roleTone(u.Role)},
			StatusBadge:   domain.ActiveBadge(u.Active),
			CanDeactivate: u.Role != domain.RoleAdmin,
		})
	}
	return rows
}

func serviceCards(services []domain.Service, viewer *domain.User) []ServiceCard {
	actions := serviceActions(viewer)
	cards := make([]ServiceCard, 0, len(services))
	for _, s := range services {
		cards = append(cards, ServiceCard{
			Service:     s,
			StatusBadge: domain.ActiveBadge(s.Active),
			Actions:     actions,
		})
	}
	return cards
}

func serviceActions(viewer *domain.User) []string {
	if viewer == nil {
		return []string{}
	}
	switch viewer.Role {
	case domain.RoleClient:
		return []string{"order"}
	case domain.RoleAdmin:
		return []string{"edit", "deactivate"}
	case domain.RoleWorker:
		return []string{}
	}
	return []string{}
}

func roleTone(r domain.Role) domain.Tone {
	switch r {
	case domain.RoleAdmin:
		return domain.ToneDanger
	case domain.RoleWorker:
		return domain.ToneInfo
	case domain.RoleClient:
		return domain.ToneSuccess
	}
	return domain.ToneInfo
}

// Aliases keep view code short.
type (
	OrderRow    = ports.OrderRow
	UserRow     = ports.UserRow
	ServiceCard = ports.ServiceCard
)
