package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	"github.com/clinicapp/clinic-backend/internal/queue/models"
	"github.com/clinicapp/clinic-backend/internal/queue/services"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type QueueController struct {
	QueueService *services.QueueService
}

func NewQueueController(service *services.QueueService) *QueueController {
	return &QueueController{QueueService: service}
}

type enqueueRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

func queueIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("id must be a number")
	}
	return id, nil
}

func respondError(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"message": err.Error(),
		"data":    nil,
	})
}

// ListTodayHandler returns the live board (today's entries minus completed
// ones) together with counts over all of today's entries.
func (qc *QueueController) ListTodayHandler(c echo.Context) error {
	entries, stats, err := qc.QueueService.ListToday(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	board := make([]*models.Queue, 0, len(entries))
	for _, q := range entries {
		if q.Status != models.StatusCompleted {
			board = append(board, q)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Today's queue retrieved",
		"data": map[string]interface{}{
			"queue": board,
			"stats": stats,
		},
	})
}

func (qc *QueueController) EnqueueHandler(c echo.Context) error {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}

	var req enqueueRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validationf("invalid request body"))
	}

	q, err := qc.QueueService.Enqueue(c.Request().Context(), actor, req.Name, req.Age, req.Gender)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  http.StatusCreated,
		"message": "Patient added to the queue successfully",
		"data":    q,
	})
}

func (qc *QueueController) ProcessHandler(c echo.Context) error {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}

	id, err := queueIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := qc.QueueService.Process(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Patient processed and consultation started",
		"data":    result,
	})
}

func (qc *QueueController) CompleteHandler(c echo.Context) error {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}

	id, err := queueIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := qc.QueueService.Complete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Queue entry marked as completed",
		"data":    map[string]interface{}{"id_queue": id},
	})
}

func (qc *QueueController) CancelHandler(c echo.Context) error {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}

	id, err := queueIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := qc.QueueService.Cancel(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Queue entry cancelled",
		"data":    map[string]interface{}{"id_queue": id},
	})
}

func (qc *QueueController) DeleteHandler(c echo.Context) error {
	actor, ok := middlewares.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"status":  http.StatusUnauthorized,
			"message": "Missing or invalid JWT claims",
			"data":    nil,
		})
	}

	id, err := queueIDParam(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := qc.QueueService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Queue entry deleted",
		"data":    nil,
	})
}
