package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/api/metrics"
	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/guard"
)

// SessionReader yields the current session. *session.Store satisfies it.
type SessionReader interface {
	Snapshot() domain.Session
}

type loadingResponse struct {
	Status string `json:"status"`
}

// Guard gates a view route. The decision is taken again on every request
// from a fresh snapshot: Wait answers 202 with {"status":"loading"},
// redirects answer 302, Render calls next.
func Guard(sessions SessionReader, route guard.Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return Apply(c, route.Path, guard.Navigate(route.Path, sessions.Snapshot()), next)
		}
	}
}

// Apply carries out decision d for a request to path.
func Apply(c echo.Context, path string, d guard.Decision, next echo.HandlerFunc) error {
	metrics.GuardDecisionsTotal.WithLabelValues(path, d.Outcome.String()).Inc()

	switch d.Outcome {
	case guard.Wait:
		return c.JSON(http.StatusAccepted, loadingResponse{Status: "loading"})
	case guard.RedirectLogin, guard.RedirectDefault:
		return c.Redirect(http.StatusFound, d.Location)
	case guard.Render:
		return next(c)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "unknown guard outcome")
}

// CatchAll redirects "/" and unknown paths the way the route table says.
func CatchAll(sessions SessionReader) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		return Apply(c, "*", guard.Navigate(path, sessions.Snapshot()), func(echo.Context) error {
			return echo.ErrNotFound
		})
	}
}
