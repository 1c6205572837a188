package middleware

import (
	"errors"
	"net/http"

	"github.com/anonto42/matrimony/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// RequireAdmin only lets callers whose directory record carries the admin role through.
// It must be used after one of the auth middlewares.
func RequireAdmin(users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actorID := ActorID(c)
			if actorID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			user, err := users.GetUserByID(c.Request().Context(), actorID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Account directory unavailable")
			}

			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}

			return next(c)
		}
	}
}
