package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	commonmodels "github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/gateway"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

const (
	cleanupModel       = "llama-3.1-8b-instant"
	cleanupTemperature = 0.3
	cleanupMaxTokens   = 4000
	cleanupTopP        = 0.9

	defaultTranscriptionModel = gateway.ModelWhisperLargeV3Turbo
)

// cleanupPromptFormat rewrites a raw transcript into a question/answer log.
const cleanupPromptFormat = `Below is a text conversation between a doctor and a patient. DO NOT translate the conversation.

<transcription>%s</transcription>

Take all the right context on my transcription and despite the useless information, output the result.

Response as a question and answer log, no extra text and plain text only.

IF the transcription is incomplete. Response: Transcription is incomplete.`

var allowedResponseFormats = map[string]bool{
	"json": true, "text": true, "srt": true, "verbose_json": true, "vtt": true,
}

// TranscriptionGateway is the slice of the LLM client the voice flow needs.
type TranscriptionGateway interface {
	Transcribe(ctx context.Context, p gateway.TranscriptionParams) (string, error)
	ChatComplete(ctx context.Context, p gateway.ChatParams) (string, error)
}

// VoiceService handles audio upload, transcription and transcript cleanup.
type VoiceService struct {
	gw            TranscriptionGateway
	consultations *ConsultationService
	audioDir      string
	logger        zerolog.Logger

	now func() time.Time
}

func NewVoiceService(gw TranscriptionGateway, consultations *ConsultationService, audioDir string, logger zerolog.Logger) *VoiceService {
	return &VoiceService{
		gw:            gw,
		consultations: consultations,
		audioDir:      audioDir,
		logger:        logger,
		now:           time.Now,
	}
}

// SavedAudio describes a stored upload.
type SavedAudio struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// SaveAudio stores the uploaded stream under the audio directory with a
// unique name.
func (s *VoiceService) SaveAudio(src io.Reader) (*SavedAudio, error) {
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("audio_%d_%s.mp3", s.now().Unix(), uuid.NewString())
	fullPath := filepath.Join(s.audioDir, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(fullPath)
		return nil, err
	}

	return &SavedAudio{Filename: filename, Path: filename, Size: size}, nil
}

// TranscribeRequest is the validated transcription input. FilePath is
// relative to the audio directory.
type TranscribeRequest struct {
	FilePath       string   `json:"file_path"`
	ConsultationID *int64   `json:"consultation_id"`
	Model          string   `json:"model"`
	Language       string   `json:"language"`
	Prompt         string   `json:"prompt"`
	ResponseFormat string   `json:"response_format"`
	Temperature    *float64 `json:"temperature"`
}

// TranscribeResult carries both the raw transcript (what gets attached to
// the consultation) and the cleaned question/answer log shown to the user.
type TranscribeResult struct {
	Transcription  string `json:"transcription"`
	RawTranscript  string `json:"raw_transcript"`
	ModelUsed      string `json:"model_used"`
	ResponseFormat string `json:"response_format"`
}

func (s *VoiceService) validate(req *TranscribeRequest) error {
	if req.FilePath == "" {
		return apperr.Validationf("file_path is required")
	}
	if req.Model == "" {
		req.Model = defaultTranscriptionModel
	}
	if req.Model != gateway.ModelWhisperLargeV3 && req.Model != gateway.ModelWhisperLargeV3Turbo {
		return apperr.Validationf("model must be %s or %s", gateway.ModelWhisperLargeV3, gateway.ModelWhisperLargeV3Turbo)
	}
	if len(req.Language) > 10 {
		return apperr.Validationf("language must be at most 10 characters")
	}
	if len(req.Prompt) > 244 {
		return apperr.Validationf("prompt must be at most 244 characters")
	}
	if req.ResponseFormat == "" {
		req.ResponseFormat = "json"
	}
	if !allowedResponseFormats[req.ResponseFormat] {
		return apperr.Validationf("response_format must be one of json, text, srt, verbose_json, vtt")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 1) {
		return apperr.Validationf("temperature must be between 0 and 1")
	}
	return nil
}

// resolve maps the client-supplied relative path onto the audio directory
// and refuses anything that escapes it.
func (s *VoiceService) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", apperr.Validationf("file_path is invalid")
	}
	return filepath.Join(s.audioDir, cleaned), nil
}

// Transcribe runs speech-to-text over the stored file, rewrites the result
// into a Q/A log, deletes the file, and optionally attaches the raw
// transcript to the actor's consultation.
func (s *VoiceService) Transcribe(ctx context.Context, actor commonmodels.Actor, req TranscribeRequest) (*TranscribeResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(req.FilePath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		return nil, apperr.NotFoundf("audio file %s", req.FilePath)
	}

	raw, err := s.gw.Transcribe(ctx, gateway.TranscriptionParams{
		FilePath:       fullPath,
		Model:          req.Model,
		ResponseFormat: req.ResponseFormat,
		Language:       req.Language,
		Prompt:         req.Prompt,
		Temperature:    req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	cleaned, err := s.gw.ChatComplete(ctx, gateway.ChatParams{
		Model:       cleanupModel,
		System:      fmt.Sprintf(cleanupPromptFormat, raw),
		Temperature: cleanupTemperature,
		MaxTokens:   cleanupMaxTokens,
		TopP:        cleanupTopP,
	})
	if err != nil {
		return nil, err
	}

	// The upload served its purpose. A failed delete is logged, not
	// surfaced; the transcript is already safe.
	if err := os.Remove(fullPath); err != nil {
		s.logger.Warn().Err(err).Str("path", fullPath).Msg("failed to delete audio file after transcription")
	}

	if req.ConsultationID != nil {
		if _, err := s.consultations.AttachTranscript(ctx, actor, *req.ConsultationID, raw, req.Model); err != nil {
			return nil, err
		}
	}

	return &TranscribeResult{
		Transcription:  cleaned,
		RawTranscript:  raw,
		ModelUsed:      req.Model,
		ResponseFormat: req.ResponseFormat,
	}, nil
}
