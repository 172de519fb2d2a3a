package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

const userKey = "user"

// RequireSession protects the console's action endpoints. Unlike Guard it
// never redirects: a missing session is a 401 and an outstanding identity
// check a 503, so scripted callers can tell the two apart. The current user
// is injected into the context.
func RequireSession(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := sessions.Snapshot()
			if s.Loading {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is loading")
			}
			if !s.Authenticated || s.User == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			c.Set(userKey, s.User)
			return next(c)
		}
	}
}

// RequireRole rejects users whose role is not among roles. It must run
// after RequireSession.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user injected by RequireSession, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}
