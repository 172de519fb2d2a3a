package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/api/metrics"
	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/guard"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

// AuthHandler serves the sign-in and sign-up forms and their actions.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type authResponse struct {
	User     *domain.User `json:"user,omitempty"`
	Redirect string       `json:"redirect"`
}

type formPage struct {
	Page   string   `json:"page"`
	Fields []string `json:"fields"`
	Roles  []string `json:"roles,omitempty"`
}

// LoginPage describes the sign-in form.
//
// @Summary      Describe the sign-in form
// @Tags         auth
// @Produce      json
// @Success      200  {object}  formPage
// @Success      202  {object}  map[string]string
// @Success      302  {string}  string
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, formPage{Page: "login", Fields: []string{"username", "password"}})
}

// RegisterPage describes the sign-up form. Admins cannot self-register.
//
// @Summary      Describe the sign-up form
// @Tags         auth
// @Produce      json
// @Success      200  {object}  formPage
// @Success      202  {object}  map[string]string
// @Success      302  {string}  string
// @Router       /register [get]
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.JSON(http.StatusOK, formPage{
		Page:   "register",
		Fields: []string{"email", "username", "password", "role"},
		Roles:  []string{string(domain.RoleClient), string(domain.RoleWorker)},
	})
}

// Login signs in and points the caller at the dashboard.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      validation.LoginForm  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var form validation.LoginForm
	if err := bind(c, &form); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), form)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, authResponse{User: user, Redirect: guard.DashboardPath})
}

// Register creates an account and points the caller at the login form.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      validation.RegisterForm  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var form validation.RegisterForm
	if err := bind(c, &form); err != nil {
		return err
	}

	if err := h.authService.Register(c.Request().Context(), form); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Redirect: guard.LoginPath})
}

// Logout clears the session. It always succeeds.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context())
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	return c.JSON(http.StatusOK, authResponse{Redirect: guard.LoginPath})
}
