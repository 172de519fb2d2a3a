package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
)

// Dashboard loads orders and services, plus users for admins, in parallel
// and summarises them.
func (v *Views) Dashboard(ctx context.Context) (*ports.DashboardPage, error) {
	user, err := v.currentUser()
	if err != nil {
		return nil, err
	}
	admin := user.Role == domain.RoleAdmin

	var (
		orders   []domain.OrderWithDetails
		services []domain.Service
		users    []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = v.orders(gctx)
		return err
	})
	g.Go(func() (err error) {
		services, err = v.services(gctx)
		return err
	})
	if admin {
		g.Go(func() (err error) {
			users, err = v.users(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &ports.DashboardPage{
		User:         user,
		RoleBadge:    domain.Badge{Label: user.Role.Label(), Tone: roleTone(user.Role)},
		Stats:        dashboardStats(orders, services, users),
		RecentOrders: orderRows(head(orders, recentLimit), user),
	}
	if admin {
		page.RecentUsers = userRows(head(users, recentLimit))
	}
	return page, nil
}

func dashboardStats(orders []domain.OrderWithDetails, services []domain.Service, users []domain.User) ports.DashboardStats {
	st := ports.DashboardStats{
		TotalOrders: len(orders),
		Services:    len(services),
		Users:       len(users),
	}
	for _, o := range orders {
		switch o.Status {
		case domain.OrderPending:
			st.PendingOrders++
		case domain.OrderCompleted:
			st.CompletedOrders++
		case domain.OrderPaid, domain.OrderCanceled:
		}
		st.Revenue += o.TotalAmount
	}
	return st
}

// head returns at most n leading items.
func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
