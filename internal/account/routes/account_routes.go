package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/account/controllers"
)

func RegisterAccountRoutes(e *echo.Echo, ac *controllers.AuthController) {
	// Login is the only unauthenticated endpoint.
	e.POST("/api/auth/login", ac.LoginHandler)
}
