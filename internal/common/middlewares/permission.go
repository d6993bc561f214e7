package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequirePermission rejects the request with 403 unless the JWT claims
// carry the named permission. It must run after JWTMiddleware.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Missing or invalid JWT claims",
					"data":    nil,
				})
			}

			if !actor.Can(permission) {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"status":  http.StatusForbidden,
					"message": "You do not have permission to " + permission,
					"data":    nil,
				})
			}

			return next(c)
		}
	}
}
