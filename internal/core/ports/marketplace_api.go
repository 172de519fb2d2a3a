package ports

import (
	"context"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// MarketplaceAPI is the REST backend as seen by the console. Implementations
// attach the current bearer token to every authenticated call.
type MarketplaceAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AccessToken, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)

	// CurrentUser resolves the identity behind the session token.
	CurrentUser(ctx context.Context) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
	// DeactivateUser is DELETE /users/{id}; the backend only marks it inactive.
	DeactivateUser(ctx context.Context, id int64) error

	ListServices(ctx context.Context) ([]domain.Service, error)
	ListServicesByCategory(ctx context.Context, category string) ([]domain.Service, error)
	DeactivateService(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]domain.OrderWithDetails, error)
	CreateOrder(ctx context.Context, serviceID int64) (*domain.Order, error)
	AcceptOrder(ctx context.Context, id int64) error
	CompleteOrder(ctx context.Context, id int64) error
	CreatePayment(ctx context.Context, orderID int64) (*domain.PaymentIntent, error)
}

// TokenSource yields the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}
