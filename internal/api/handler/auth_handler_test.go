package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, form validation.LoginForm) (*domain.User, error)
	registerFn func(ctx context.Context, form validation.RegisterForm) error
	loggedOut  bool
}

func (s *stubAuthService) Login(ctx context.Context, form validation.LoginForm) (*domain.User, error) {
	return s.loginFn(ctx, form)
}

func (s *stubAuthService) Register(ctx context.Context, form validation.RegisterForm) error {
	return s.registerFn(ctx, form)
}

func (s *stubAuthService) Logout(context.Context) { s.loggedOut = true }

func jsonRequest(method, path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, form validation.LoginForm) (*domain.User, error) {
			if form.Username != "bob" || form.Password != "secret1" {
				t.Fatalf("unexpected form: %+v", form)
			}
			return &domain.User{ID: 2, Username: "bob", Role: domain.RoleWorker}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/login", `{"username":"bob","password":"secret1"}`)
	if err := handler.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["redirect"] != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %v", resp["redirect"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "bob" || user["role"] != "worker" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	e := echo.New()
	want := &domain.APIError{Status: http.StatusUnauthorized, Detail: "Incorrect username or password"}
	stub := &stubAuthService{
		loginFn: func(context.Context, validation.LoginForm) (*domain.User, error) { return nil, want },
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/login", `{"username":"bob","password":"nope"}`)
	err := handler.Login(e.NewContext(req, rec))
	if !errors.Is(err, want) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestAuthHandler_Login_BadPayload(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(&stubAuthService{})

	req, rec := jsonRequest(http.MethodPost, "/login", `{"username":`)
	err := handler.Login(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, form validation.RegisterForm) error {
			if form.Role != "client" || form.Email != "a@example.com" {
				t.Fatalf("unexpected form: %+v", form)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/register",
		`{"email":"a@example.com","username":"alice","password":"secret1","role":"client"}`)
	if err := handler.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("expected redirect to login, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{}
	handler := NewAuthHandler(stub)

	req, rec := jsonRequest(http.MethodPost, "/logout", "")
	if err := handler.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !stub.loggedOut {
		t.Fatal("expected the session to be cleared")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_RegisterPageOffersNoAdminRole(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	rec := httptest.NewRecorder()
	if err := handler.RegisterPage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.Contains(rec.Body.String(), "admin") {
		t.Fatalf("admin must not be offered: %s", rec.Body.String())
	}
}
