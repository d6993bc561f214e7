package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/pkg/utils"
)

type contextKey string

// ContextKeyClaims is the echo context key the validated claims are stored
// under; controllers read the actor back through ActorFromContext.
const ContextKeyClaims contextKey = "claims"

// JWTMiddleware validates the Bearer token and stores its claims in the
// request context.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Authorization header missing",
				"data":    nil,
			})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Invalid authorization header",
				"data":    nil,
			})
		}

		claims, err := utils.ValidateJWTToken(parts[1])
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status":  http.StatusUnauthorized,
				"message": "Invalid token: " + err.Error(),
				"data":    nil,
			})
		}

		c.Set(string(ContextKeyClaims), claims)
		return next(c)
	}
}

// ActorFromContext rebuilds the acting user from the claims stored by
// JWTMiddleware. The boolean is false when the request was not
// authenticated.
func ActorFromContext(c echo.Context) (models.Actor, bool) {
	raw := c.Get(string(ContextKeyClaims))
	claims, ok := raw.(*utils.Claims)
	if !ok || claims == nil {
		return models.Actor{}, false
	}
	return models.Actor{
		ID:          claims.UserID,
		Name:        claims.Name,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, true
}
