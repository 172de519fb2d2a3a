package service

import (
	"context"
	"fmt"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/filter"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
)

// Services lists services, narrowed by category on the backend when one is
// selected and then filtered locally by the search term.
func (v *Views) Services(ctx context.Context, q filter.ServiceQuery) (*ports.ServicesPage, error) {
	user, err := v.currentUser()
	if err != nil {
		return nil, err
	}

	all, err := v.services(ctx)
	if err != nil {
		return nil, err
	}
	listed := all
	if q.Category != "" && q.Category != filter.All {
		if listed, err = v.servicesByCategory(ctx, q.Category); err != nil {
			return nil, err
		}
	}

	shown := filter.Services(listed, q)
	page := &ports.ServicesPage{
		Services:   serviceCards(shown, user),
		Categories: filter.Categories(all),
		Query:      q,
		CanAdd:     user.Role == domain.RoleAdmin,
	}
	if len(shown) == 0 {
		page.EmptyMessage = emptyMessage(q.Search != "" || (q.Category != "" && q.Category != filter.All), emptyServices)
	}
	return page, nil
}

// OrderService places an order for a service. Only clients may order.
func (v *Views) OrderService(ctx context.Context, serviceID int64) (*domain.Order, error) {
	if err := v.requireRole(domain.RoleClient); err != nil {
		return nil, err
	}
	var order *domain.Order
	err := v.mutate(ctx, "create order", "Order created successfully!", "Failed to create order",
		func(ctx context.Context) (err error) {
			order, err = v.api.CreateOrder(ctx, serviceID)
			return err
		}, query.KeyOrders)
	if err != nil {
		return nil, fmt.Errorf("service %d: %w", serviceID, err)
	}
	return order, nil
}

func emptyMessage(filtered bool, unfiltered string) string {
	if filtered {
		return emptyFiltered
	}
	return unfiltered
}
