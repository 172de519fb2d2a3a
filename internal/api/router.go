package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/99minutos/marketplace-console/internal/api/handler"
	"github.com/99minutos/marketplace-console/internal/api/middleware"
	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/guard"
	"github.com/99minutos/marketplace-console/internal/core/ports"
)

// Deps are the collaborators the console routes need.
type Deps struct {
	Sessions middleware.SessionReader
	Auth     ports.AuthService

	Dashboard ports.DashboardView
	Services  ports.ServicesView
	Orders    ports.OrdersView
	Profile   ports.ProfileView
	Admin     ports.AdminView

	Notifications handler.NotificationFeed
	// Checks are the readiness checks, by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	authHandler := handler.NewAuthHandler(d.Auth)
	views := handler.NewViewHandler(d.Dashboard, d.Services, d.Orders, d.Profile, d.Admin)

	// --- Views, gated by the route guard ---
	pages := map[string]echo.HandlerFunc{
		guard.LoginPath:     authHandler.LoginPage,
		guard.RegisterPath:  authHandler.RegisterPage,
		guard.DashboardPath: views.Dashboard,
		"/services":         views.Services,
		"/orders":           views.Orders,
		"/profile":          views.Profile,
		"/admin":            views.Admin,
	}
	for _, r := range guard.Routes {
		h, ok := pages[r.Path]
		if !ok {
			continue
		}
		e.GET(r.Path, h, middleware.Guard(d.Sessions, r))
	}
	e.GET("/", middleware.CatchAll(d.Sessions))
	e.RouteNotFound("/*", middleware.CatchAll(d.Sessions))

	// --- Auth actions (no session required) ---
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)
	e.POST("/logout", authHandler.Logout)

	// --- View actions ---
	requireSession := middleware.RequireSession(d.Sessions)
	clients := middleware.RequireRole(domain.RoleClient)
	workers := middleware.RequireRole(domain.RoleWorker)
	admins := middleware.RequireRole(domain.RoleAdmin)

	e.POST("/services/:id/order", views.OrderService, requireSession, clients)
	e.POST("/orders/:id/accept", views.AcceptOrder, requireSession, workers)
	e.POST("/orders/:id/complete", views.CompleteOrder, requireSession, workers)
	e.POST("/orders/:id/payment", views.PayOrder, requireSession, clients)
	e.PATCH("/profile", views.UpdateProfile, requireSession)
	e.DELETE("/admin/users/:id", views.DeactivateUser, requireSession, admins)
	e.DELETE("/admin/services/:id", views.DeactivateService, requireSession, admins)

	// --- Session state and notifications ---
	e.GET("/session", handler.NewSessionHandler(d.Sessions).Show)
	e.GET("/notifications", handler.NewNotificationHandler(d.Notifications).List)

	// --- Health checks and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
