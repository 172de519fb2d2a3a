package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/notify"
	"github.com/99minutos/marketplace-console/internal/core/query"
	"github.com/99minutos/marketplace-console/internal/core/session"
	"github.com/99minutos/marketplace-console/internal/core/validation"
	"github.com/99minutos/marketplace-console/internal/infrastructure/db/memory"
)

// fakeAPI is a scriptable MarketplaceAPI. Unset hooks return zero values.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login             func(domain.Credentials) (*domain.AccessToken, error)
	register          func(domain.Registration) (*domain.User, error)
	currentUser       func(context.Context) (*domain.User, error)
	users             []domain.User
	usersErr          error
	updateUser        func(int64, domain.UserUpdate) (*domain.User, error)
	deactivateUserErr error
	services          []domain.Service
	servicesErr       error
	byCategory        map[string][]domain.Service
	orders            []domain.OrderWithDetails
	ordersErr         error
	createOrderErr    error
	acceptErr         error
	completeErr       error
	paymentErr        error
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(_ context.Context, creds domain.Credentials) (*domain.AccessToken, error) {
	f.hit("Login")
	if f.login == nil {
		return &domain.AccessToken{AccessToken: "tok", TokenType: "bearer"}, nil
	}
	return f.login(creds)
}

func (f *fakeAPI) Register(_ context.Context, reg domain.Registration) (*domain.User, error) {
	f.hit("Register")
	if f.register == nil {
		return &domain.User{ID: 99, Username: reg.Username, Email: reg.Email, Role: reg.Role, Active: true}, nil
	}
	return f.register(reg)
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	f.hit("CurrentUser")
	if f.currentUser == nil {
		return nil, &domain.APIError{Status: 401}
	}
	return f.currentUser(ctx)
}

func (f *fakeAPI) ListUsers(context.Context) ([]domain.User, error) {
	f.hit("ListUsers")
	return f.users, f.usersErr
}

func (f *fakeAPI) UpdateUser(_ context.Context, id int64, u domain.UserUpdate) (*domain.User, error) {
	f.hit("UpdateUser")
	return f.updateUser(id, u)
}

func (f *fakeAPI) DeactivateUser(context.Context, int64) error {
	f.hit("DeactivateUser")
	return f.deactivateUserErr
}

func (f *fakeAPI) ListServices(context.Context) ([]domain.Service, error) {
	f.hit("ListServices")
	return f.services, f.servicesErr
}

func (f *fakeAPI) ListServicesByCategory(_ context.Context, category string) ([]domain.Service, error) {
	f.hit("ListServicesByCategory")
	return f.byCategory[category], nil
}

func (f *fakeAPI) DeactivateService(context.Context, int64) error {
	f.hit("DeactivateService")
	return nil
}

func (f *fakeAPI) ListOrders(context.Context) ([]domain.OrderWithDetails, error) {
	f.hit("ListOrders")
	return f.orders, f.ordersErr
}

func (f *fakeAPI) CreateOrder(_ context.Context, serviceID int64) (*domain.Order, error) {
	f.hit("CreateOrder")
	if f.createOrderErr != nil {
		return nil, f.createOrderErr
	}
	return &domain.Order{ID: 500, ServiceID: serviceID, Status: domain.OrderPending}, nil
}

func (f *fakeAPI) AcceptOrder(context.Context, int64) error {
	f.hit("AcceptOrder")
	return f.acceptErr
}

func (f *fakeAPI) CompleteOrder(context.Context, int64) error {
	f.hit("CompleteOrder")
	return f.completeErr
}

func (f *fakeAPI) CreatePayment(_ context.Context, orderID int64) (*domain.PaymentIntent, error) {
	f.hit("CreatePayment")
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return &domain.PaymentIntent{ClientSecret: "secret", PaymentIntentID: "pi_1"}, nil
}

type harness struct {
	api     *fakeAPI
	storage *memory.SessionStorage
	store   *session.Store
	cache   *query.Cache
	center  *notify.Center
	auth    *AuthService
	views   *Views
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()
	log := zerolog.Nop()
	storage := memory.NewSessionStorage()
	store := session.NewStore(storage, log)
	cache := query.NewCache()
	center := notify.NewCenter(0, log)
	val := validation.New()
	auth := NewAuthService(api, store, cache, center, val, log)
	return &harness{
		api:     api,
		storage: storage,
		store:   store,
		cache:   cache,
		center:  center,
		auth:    auth,
		views:   NewViews(api, store, cache, center, auth, val, log),
	}
}

// signIn puts user straight into the session.
func (h *harness) signIn(user domain.User) {
	h.store.SetToken(context.Background(), "tok-"+user.Username)
	h.store.SetUser(&user)
}

func (h *harness) messages() []string {
	var out []string
	for _, n := range h.center.Drain() {
		out = append(out, string(n.Level)+": "+n.Message)
	}
	return out
}

var (
	alice = domain.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: domain.RoleClient, Active: true}
	bob   = domain.User{ID: 2, Username: "bob", Email: "bob@example.com", Role: domain.RoleWorker, Active: true}
	root  = domain.User{ID: 3, Username: "root", Email: "root@example.com", Role: domain.RoleAdmin, Active: true}
)
