package service

import (
	"context"
	"fmt"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/filter"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
)

func (v *Views) Orders(ctx context.Context, q filter.OrderQuery) (*ports.OrdersPage, error) {
	user, err := v.currentUser()
	if err != nil {
		return nil, err
	}
	orders, err := v.orders(ctx)
	if err != nil {
		return nil, err
	}

	shown := filter.Orders(orders, q)
	page := &ports.OrdersPage{
		Orders:   orderRows(shown, user),
		Statuses: domain.OrderStatuses,
		Query:    q,
	}
	if len(shown) == 0 {
		page.EmptyMessage = emptyMessage(q.Search != "" || (q.Status != "" && q.Status != filter.All), emptyOrders)
	}
	return page, nil
}

// Accept assigns a pending order to the signed-in worker.
func (v *Views) Accept(ctx context.Context, orderID int64) error {
	if err := v.requireRole(domain.RoleWorker); err != nil {
		return err
	}
	err := v.mutate(ctx, "accept order", "Order accepted successfully!", "Failed to accept order",
		func(ctx context.Context) error {
			return v.api.AcceptOrder(ctx, orderID)
		}, query.KeyOrders)
	if err != nil {
		return fmt.Errorf("order %d: %w", orderID, err)
	}
	return nil
}

// Complete marks a paid order of the signed-in worker as done.
func (v *Views) Complete(ctx context.Context, orderID int64) error {
	if err := v.requireRole(domain.RoleWorker); err != nil {
		return err
	}
	err := v.mutate(ctx, "complete order", "Order completed successfully!", "Failed to complete order",
		func(ctx context.Context) error {
			return v.api.CompleteOrder(ctx, orderID)
		}, query.KeyOrders)
	if err != nil {
		return fmt.Errorf("order %d: %w", orderID, err)
	}
	return nil
}

// Pay starts a payment for a pending order and returns the intent the
// client confirms with the payment provider.
func (v *Views) Pay(ctx context.Context, orderID int64) (*domain.PaymentIntent, error) {
	if err := v.requireRole(domain.RoleClient); err != nil {
		return nil, err
	}
	var intent *domain.PaymentIntent
	err := v.mutate(ctx, "pay order", "Payment started", "Failed to start payment",
		func(ctx context.Context) (err error) {
			intent, err = v.api.CreatePayment(ctx, orderID)
			return err
		}, query.KeyOrders)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	return intent, nil
}
