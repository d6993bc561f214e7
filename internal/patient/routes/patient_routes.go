package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	"github.com/clinicapp/clinic-backend/internal/patient/controllers"
)

func RegisterPatientRoutes(e *echo.Echo, pc *controllers.PatientController) {
	g := e.Group("/api/patients", middlewares.JWTMiddleware)
	g.GET("", pc.ListHandler)
	g.POST("", pc.RegisterHandler)
	g.GET("/:id", pc.ShowHandler)
	g.PUT("/:id", pc.UpdateHandler)
	g.DELETE("/:id", pc.DeleteHandler)
}
