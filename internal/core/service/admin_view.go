package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/filter"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
)

// Admin lists users and services. The search term applies to usernames and
// emails on the users tab and to service names on the services tab.
func (v *Views) Admin(ctx context.Context, q filter.UserQuery) (*ports.AdminPage, error) {
	if err := v.requireRole(domain.RoleAdmin); err != nil {
		return nil, err
	}
	admin := v.store.User()

	var (
		users    []domain.User
		services []domain.Service
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = v.users(gctx)
		return err
	})
	g.Go(func() (err error) {
		services, err = v.services(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shownServices := filter.Apply(services, func(s domain.Service) bool {
		return filter.Matches(q.Search, s.Name)
	})
	return &ports.AdminPage{
		Users:        userRows(filter.Users(users, q)),
		Services:     serviceCards(shownServices, admin),
		UserCount:    len(users),
		ServiceCount: len(services),
		Query:        q,
	}, nil
}

// DeactivateUser deactivates a non-admin account.
func (v *Views) DeactivateUser(ctx context.Context, userID int64) error {
	if err := v.requireRole(domain.RoleAdmin); err != nil {
		return err
	}
	users, err := v.users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == userID && u.Role == domain.RoleAdmin {
			return fmt.Errorf("user %d is an admin: %w", userID, domain.ErrForbidden)
		}
	}

	err = v.mutate(ctx, "deactivate user", "User deactivated successfully", "Failed to deactivate user",
		func(ctx context.Context) error {
			return v.api.DeactivateUser(ctx, userID)
		}, query.KeyUsers)
	if err != nil {
		return fmt.Errorf("user %d: %w", userID, err)
	}
	return nil
}

func (v *Views) DeactivateService(ctx context.Context, serviceID int64) error {
	if err := v.requireRole(domain.RoleAdmin); err != nil {
		return err
	}
	err := v.mutate(ctx, "deactivate service", "Service deactivated successfully", "Failed to deactivate service",
		func(ctx context.Context) error {
			return v.api.DeactivateService(ctx, serviceID)
		}, query.KeyServices)
	if err != nil {
		return fmt.Errorf("service %d: %w", serviceID, err)
	}
	return nil
}
