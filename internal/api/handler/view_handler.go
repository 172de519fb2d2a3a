package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/core/filter"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

// ViewHandler serves the page views and their actions. Access control is
// done by the route middleware; the views check roles again.
type ViewHandler struct {
	dashboard ports.DashboardView
	services  ports.ServicesView
	orders    ports.OrdersView
	profile   ports.ProfileView
	admin     ports.AdminView
}

func NewViewHandler(
	dashboard ports.DashboardView,
	services ports.ServicesView,
	orders ports.OrdersView,
	profile ports.ProfileView,
	admin ports.AdminView,
) *ViewHandler {
	return &ViewHandler{
		dashboard: dashboard,
		services:  services,
		orders:    orders,
		profile:   profile,
		admin:     admin,
	}
}

// Dashboard renders the headline numbers and the most recent orders.
//
// @Summary      Dashboard
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.DashboardPage
// @Success      202  {object}  map[string]string
// @Success      302  {string}  string
// @Failure      502  {object}  map[string]string
// @Router       /dashboard [get]
func (h *ViewHandler) Dashboard(c echo.Context) error {
	page, err := h.dashboard.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Services accepts ?search= and ?category=.
//
// @Summary      List services
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        search    query     string  false  "Name or description substring"
// @Param        category  query     string  false  "Exact category"
// @Success      200       {object}  ports.ServicesPage
// @Success      302       {string}  string
// @Failure      502       {object}  map[string]string
// @Router       /services [get]
func (h *ViewHandler) Services(c echo.Context) error {
	var q filter.ServiceQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	page, err := h.services.Services(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// OrderService places an order for the service in the path.
//
// @Summary      Order a service
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Service ID"
// @Success      201  {object}  domain.Order
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /services/{id}/order [post]
func (h *ViewHandler) OrderService(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.services.OrderService(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// Orders accepts ?search= and ?status=.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Service name or client username substring"
// @Param        status  query     string  false  "Exact status"
// @Success      200     {object}  ports.OrdersPage
// @Success      302     {string}  string
// @Failure      502     {object}  map[string]string
// @Router       /orders [get]
func (h *ViewHandler) Orders(c echo.Context) error {
	var q filter.OrderQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	page, err := h.orders.Orders(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// AcceptOrder assigns a pending order to the signed-in worker.
//
// @Summary      Accept an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      204  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /orders/{id}/accept [post]
func (h *ViewHandler) AcceptOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.orders.Accept(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteOrder marks a paid order as done.
//
// @Summary      Complete an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      204  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /orders/{id}/complete [post]
func (h *ViewHandler) CompleteOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.orders.Complete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PayOrder starts a payment and returns the intent to confirm.
//
// @Summary      Pay an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  domain.PaymentIntent
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /orders/{id}/payment [post]
func (h *ViewHandler) PayOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	intent, err := h.orders.Pay(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, intent)
}

// Profile shows the signed-in user as the backend knows it.
//
// @Summary      Show the profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ProfilePage
// @Success      302  {string}  string
// @Failure      502  {object}  map[string]string
// @Router       /profile [get]
func (h *ViewHandler) Profile(c echo.Context) error {
	page, err := h.profile.Profile(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdateProfile saves the username and email.
//
// @Summary      Update the profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validation.ProfileForm  true  "Profile fields"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /profile [patch]
func (h *ViewHandler) UpdateProfile(c echo.Context) error {
	var form validation.ProfileForm
	if err := bind(c, &form); err != nil {
		return err
	}
	user, err := h.profile.UpdateProfile(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Admin accepts ?search= and ?role=.
//
// @Summary      Administer users and services
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Username, email or service name substring"
// @Param        role    query     string  false  "Exact role"
// @Success      200     {object}  ports.AdminPage
// @Success      302     {string}  string
// @Failure      502     {object}  map[string]string
// @Router       /admin [get]
func (h *ViewHandler) Admin(c echo.Context) error {
	var q filter.UserQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	page, err := h.admin.Admin(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// DeactivateUser marks a non-admin account inactive.
//
// @Summary      Deactivate a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      204  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /admin/users/{id} [delete]
func (h *ViewHandler) DeactivateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeactivateUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeactivateService marks a service inactive.
//
// @Summary      Deactivate a service
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Service ID"
// @Success      204  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /admin/services/{id} [delete]
func (h *ViewHandler) DeactivateService(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeactivateService(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
