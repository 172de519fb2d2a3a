package ports

import (
	"context"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/filter"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

// AuthService drives sign-in, sign-up and sign-out.
type AuthService interface {
	Login(ctx context.Context, form validation.LoginForm) (*domain.User, error)
	Register(ctx context.Context, form validation.RegisterForm) error
	Logout(ctx context.Context)
}

// OrderRow is an order as rendered in lists, with the actions open to the
// current user.
type OrderRow struct {
	domain.OrderWithDetails
	StatusBadge domain.Badge         `json:"status_badge"`
	Actions     []domain.OrderAction `json:"actions"`
}

// UserRow is a user as rendered in admin tables.
type UserRow struct {
	domain.User
	RoleBadge     domain.Badge `json:"role_badge"`
	StatusBadge   domain.Badge `json:"status_badge"`
	CanDeactivate bool         `json:"can_deactivate"`
}

// ServiceCard is a service as rendered in the services grid and admin table.
type ServiceCard struct {
	domain.Service
	StatusBadge domain.Badge `json:"status_badge"`
	Actions     []string     `json:"actions"`
}

// DashboardStats are the four headline numbers plus counts.
type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	CompletedOrders int     `json:"completed_orders"`
	Revenue         float64 `json:"revenue"`
	Services        int     `json:"services"`
	Users           int     `json:"users,omitempty"`
}

type DashboardPage struct {
	User         *domain.User   `json:"user"`
	RoleBadge    domain.Badge   `json:"role_badge"`
	Stats        DashboardStats `json:"stats"`
	RecentOrders []OrderRow     `json:"recent_orders"`
	// RecentUsers is only filled for admins.
	RecentUsers []UserRow `json:"recent_users,omitempty"`
}

type ServicesPage struct {
	Services   []ServiceCard       `json:"services"`
	Categories []string            `json:"categories"`
	Query      filter.ServiceQuery `json:"query"`
	CanAdd     bool                `json:"can_add"`
	// EmptyMessage explains an empty list; blank when there are results.
	EmptyMessage string `json:"empty_message,omitempty"`
}

type OrdersPage struct {
	Orders       []OrderRow           `json:"orders"`
	Statuses     []domain.OrderStatus `json:"statuses"`
	Query        filter.OrderQuery    `json:"query"`
	EmptyMessage string               `json:"empty_message,omitempty"`
}

type ProfilePage struct {
	User      *domain.User `json:"user"`
	RoleBadge domain.Badge `json:"role_badge"`
}

type AdminPage struct {
	Users        []UserRow        `json:"users"`
	Services     []ServiceCard    `json:"services"`
	UserCount    int              `json:"user_count"`
	ServiceCount int              `json:"service_count"`
	Query        filter.UserQuery `json:"query"`
}

type DashboardView interface {
	Dashboard(ctx context.Context) (*DashboardPage, error)
}

type ServicesView interface {
	Services(ctx context.Context, q filter.ServiceQuery) (*ServicesPage, error)
	OrderService(ctx context.Context, serviceID int64) (*domain.Order, error)
}

type OrdersView interface {
	Orders(ctx context.Context, q filter.OrderQuery) (*OrdersPage, error)
	Accept(ctx context.Context, orderID int64) error
	Complete(ctx context.Context, orderID int64) error
	Pay(ctx context.Context, orderID int64) (*domain.PaymentIntent, error)
}

type ProfileView interface {
	Profile(ctx context.Context) (*ProfilePage, error)
	UpdateProfile(ctx context.Context, form validation.ProfileForm) (*domain.User, error)
}

type AdminView interface {
	Admin(ctx context.Context, q filter.UserQuery) (*AdminPage, error)
	DeactivateUser(ctx context.Context, userID int64) error
	DeactivateService(ctx context.Context, serviceID int64) error
}
