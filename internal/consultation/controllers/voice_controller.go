package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinic-backend/internal/consultation/services"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type VoiceController struct {
	VoiceService *services.VoiceService
}

func NewVoiceController(service *services.VoiceService) *VoiceController {
	return &VoiceController{VoiceService: service}
}

// UploadHandler stores the multipart "audio" file and returns its path for
// a later transcribe call.
func (vc *VoiceController) UploadHandler(c echo.Context) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return respondError(c, apperr.Validationf("audio file is required"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(c, apperr.Validationf("audio file could not be read"))
	}
	defer src.Close()

	saved, err := vc.VoiceService.SaveAudio(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status":  http.StatusInternalServerError,
			"message": "Failed to upload audio file: " + err.Error(),
			"data":    nil,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Audio file uploaded successfully",
		"data":    saved,
	})
}

// TranscribeHandler runs the stored audio through speech-to-text and,
// when a consultation id is supplied, attaches the transcript to it.
func (vc *VoiceController) TranscribeHandler(c echo.Context) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}

	var req services.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validationf("invalid request body"))
	}

	result, err := vc.VoiceService.Transcribe(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Audio transcribed successfully",
		"data":    result,
	})
}
