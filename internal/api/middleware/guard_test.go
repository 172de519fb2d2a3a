package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/guard"
)

type fixedSession domain.Session

func (f fixedSession) Snapshot() domain.Session { return domain.Session(f) }

var (
	admin  = &domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin}
	client = &domain.User{ID: 2, Username: "carla", Role: domain.RoleClient}
)

func signedIn(u *domain.User) fixedSession {
	return fixedSession{User: u, Token: "tok", Authenticated: true}
}

func route(t *testing.T, path string) guard.Route {
	t.Helper()
	r, ok := guard.Lookup(path)
	if !ok {
		t.Fatalf("route %s not in table", path)
	}
	return r
}

func serve(t *testing.T, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestGuard_RendersForAllowedRole(t *testing.T) {
	rec, called := serve(t, Guard(signedIn(admin), route(t, "/admin")))
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_RedirectsWrongRoleToDashboard(t *testing.T) {
	rec, called := serve(t, Guard(signedIn(client), route(t, "/admin")))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != guard.DashboardPath {
		t.Fatalf("expected Location %s, got %q", guard.DashboardPath, loc)
	}
}

func TestGuard_RedirectsAnonymousToLogin(t *testing.T) {
	rec, called := serve(t, Guard(fixedSession{}, route(t, "/orders")))
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != guard.LoginPath {
		t.Fatalf("expected 302 to %s, got %d %q", guard.LoginPath, rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestGuard_WaitsWhileLoading(t *testing.T) {
	sessions := []fixedSession{
		{Loading: true},
		{Loading: true, Token: "tok"},
		{Loading: true, User: client, Authenticated: true},
	}
	for _, s := range sessions {
		rec, called := serve(t, Guard(s, route(t, "/admin")))
		if called {
			t.Fatalf("should not reach next handler while loading")
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body["status"] != "loading" {
			t.Fatalf("expected loading status, got %v", body)
		}
	}
}

func TestGuard_PublicRouteRedirectsSignedIn(t *testing.T) {
	rec, called := serve(t, Guard(signedIn(client), route(t, "/login")))
	if called {
		t.Fatalf("should not render login for a signed-in user")
	}
	if rec.Header().Get(echo.HeaderLocation) != guard.DashboardPath {
		t.Fatalf("expected redirect to dashboard, got %q", rec.Header().Get(echo.HeaderLocation))
	}

	_, called = serve(t, Guard(fixedSession{}, route(t, "/register")))
	if !called {
		t.Fatalf("register should render for anonymous users")
	}
}

func TestGuard_ReevaluatesEveryRequest(t *testing.T) {
	s := &mutableSession{}
	mw := Guard(s, route(t, "/profile"))

	rec, _ := serve(t, mw)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect before sign-in, got %d", rec.Code)
	}

	s.s = domain.Session(signedIn(client))
	rec, called := serve(t, mw)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected render after sign-in, got %d", rec.Code)
	}
}

type mutableSession struct{ s domain.Session }

func (m *mutableSession) Snapshot() domain.Session { return m.s }

func TestCatchAll_RedirectsToDashboard(t *testing.T) {
	e := echo.New()
	for _, path := range []string{"/", "/nowhere"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := CatchAll(fixedSession{})(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != guard.DashboardPath {
			t.Fatalf("%s: expected 302 to dashboard, got %d %q", path, rec.Code, rec.Header().Get(echo.HeaderLocation))
		}
	}
}
