package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	"github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/consultation/controllers"
)

func RegisterConsultationRoutes(e *echo.Echo, cc *controllers.ConsultationController, vc *controllers.VoiceController) {
	g := e.Group("/api/consultations", middlewares.JWTMiddleware)
	g.GET("", cc.ListHandler, middlewares.RequirePermission(models.PermViewConsultation))
	g.GET("/:id", cc.ShowHandler, middlewares.RequirePermission(models.PermViewConsultation))
	g.POST("/:id/summarize", cc.SummarizeHandler)
	g.POST("/:id/complete", cc.CompleteHandler)

	v := e.Group("/api/voice", middlewares.JWTMiddleware)
	v.POST("/upload", vc.UploadHandler)
	v.POST("/transcribe", vc.TranscribeHandler)
}
