package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	"github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/queue/controllers"
)

// RegisterQueueRoutes wires the queue endpoints. Mutations carry their
// permission checks in the service layer; the board view is gated here.
func RegisterQueueRoutes(e *echo.Echo, qc *controllers.QueueController) {
	g := e.Group("/api/queue", middlewares.JWTMiddleware)

	g.GET("", qc.ListTodayHandler, middlewares.RequirePermission(models.PermViewQueue))
	g.POST("", qc.EnqueueHandler)
	g.POST("/:id/process", qc.ProcessHandler)
	g.POST("/:id/complete", qc.CompleteHandler)
	g.POST("/:id/cancel", qc.CancelHandler)
	g.DELETE("/:id", qc.DeleteHandler)
}
