package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	commonmodels "github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/consultation/services"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type ConsultationController struct {
	ConsultationService *services.ConsultationService
}

func NewConsultationController(service *services.ConsultationService) *ConsultationController {
	return &ConsultationController{ConsultationService: service}
}

func respondError(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"message": err.Error(),
		"data":    nil,
	})
}

// requireActor reads the authenticated actor; when it is missing the 401
// response is already written and the handler must return nil.
func requireActor(c echo.Context) (commonmodels.Actor, bool) {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}
	return actor, ok
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("id must be a number")
	}
	return id, nil
}

func (cc *ConsultationController) ListHandler(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}

	consultations, err := cc.ConsultationService.List(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Consultations retrieved",
		"data":    consultations,
	})
}

func (cc *ConsultationController) ShowHandler(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}

	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	cons, err := cc.ConsultationService.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Consultation retrieved",
		"data":    cons,
	})
}

func (cc *ConsultationController) SummarizeHandler(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}

	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := cc.ConsultationService.Summarize(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Consultation summarized",
		"data":    map[string]interface{}{"summary": summary},
	})
}

func (cc *ConsultationController) CompleteHandler(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}

	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := cc.ConsultationService.Complete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Consultation completed",
		"data":    map[string]interface{}{"id_consultation": id},
	})
}
