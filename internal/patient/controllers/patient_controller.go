package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	"github.com/clinicapp/clinic-backend/internal/patient/services"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type PatientController struct {
	PatientService *services.PatientService
}

func NewPatientController(service *services.PatientService) *PatientController {
	return &PatientController{PatientService: service}
}

type patientRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

func respondError(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"message": err.Error(),
		"data":    nil,
	})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("id must be a number")
	}
	return id, nil
}

func (pc *PatientController) ListHandler(c echo.Context) error {
	patients, err := pc.PatientService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Patients retrieved",
		"data":    patients,
	})
}

func (pc *PatientController) RegisterHandler(c echo.Context) error {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}

	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validationf("invalid request body"))
	}

	result, err := pc.PatientService.Register(c.Request().Context(), actor, req.Name, req.Age, req.Gender)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  http.StatusCreated,
		"message": "Patient registered successfully and consultation started",
		"data":    result,
	})
}

func (pc *PatientController) ShowHandler(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	patient, consultations, serr := pc.PatientService.Get(c.Request().Context(), id)
	if serr != nil {
		return respondError(c, serr)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Patient retrieved",
		"data": map[string]interface{}{
			"patient":       patient,
			"consultations": consultations,
		},
	})
}

func (pc *PatientController) UpdateHandler(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validationf("invalid request body"))
	}

	patient, serr := pc.PatientService.Update(c.Request().Context(), id, req.Name, req.Age, req.Gender)
	if serr != nil {
		return respondError(c, serr)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Patient updated successfully",
		"data":    patient,
	})
}

func (pc *PatientController) DeleteHandler(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if serr := pc.PatientService.Delete(c.Request().Context(), id); serr != nil {
		return respondError(c, serr)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Patient deleted successfully",
		"data":    nil,
	})
}
