// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evea/evea_backend/models"
)

// RequireRole checks if the authenticated caller has one of the allowed roles
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := ExtractRole(c)
			if role == "" {
				c.Logger().Error("Authentication failed: role not found")
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: role not found",
				})
			}

			for _, r := range allowed {
				if role == r {
					return next(c)
				}
			}

			c.Logger().Warnf("Access denied for role %s on %s, allowed roles: %v", role, c.Request().URL.Path, allowed)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your account type",
			})
		}
	}
}
