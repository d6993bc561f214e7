package services

import (
	"context"
	"time"

	commonmodels "github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/consultation/models"
	"github.com/clinicapp/clinic-backend/internal/consultation/repositories"
	"github.com/clinicapp/clinic-backend/internal/gateway"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

// summarizeSystemPrompt is the fixed contract with the LLM: the output must
// follow the six-section structure the consultation view renders.
const summarizeSystemPrompt = `You are a highly accurate and detail oriented medical assistant helping doctors analyze consultations.
Your goal is to provide a structured, clear, and clinically useful summary of a doctor-patient consultation transcript.

IMPORTANT:
- Base your analysis ONLY on the transcript.
- If important information is missing, clearly state "Information Missing" in the relevant section.
- Maintain medical professionalism and accuracy.

Your output must follow this EXACT structure:

1. Brief Summary
2. Key Symptoms and Patient Complaints
3. Potential Diagnoses (Possible, Not Certain)
4. Recommended Tests or Follow-up Actions
5. Immediate Concerns
6. Possible Questions to Ask for Better Diagnosis`

const (
	summarizeModel       = "meta-llama/llama-4-maverick-17b-128e-instruct"
	summarizeTemperature = 0.2
	summarizeMaxTokens   = 8192
)

// ChatGateway is the slice of the LLM client summarization needs.
type ChatGateway interface {
	ChatComplete(ctx context.Context, p gateway.ChatParams) (string, error)
}

// ConsultationService owns consultation status transitions and their
// coupling to the queue.
type ConsultationService struct {
	repo repositories.Repository
	chat ChatGateway

	now func() time.Time
}

func NewConsultationService(repo repositories.Repository, chat ChatGateway) *ConsultationService {
	return &ConsultationService{repo: repo, chat: chat, now: time.Now}
}

// SetNow overrides the service clock.
func (s *ConsultationService) SetNow(now func() time.Time) {
	s.now = now
}

// CreateDraft opens a new draft consultation for the patient under the
// given doctor. Queue processing and direct patient registration both go
// through here.
func (s *ConsultationService) CreateDraft(ctx context.Context, patientID, doctorID int64) (*models.Consultation, error) {
	now := s.now()
	cons := &models.Consultation{
		PatientID: patientID,
		DoctorID:  doctorID,
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, cons); err != nil {
		return nil, err
	}
	return cons, nil
}

// List returns the acting doctor's consultations, newest first.
func (s *ConsultationService) List(ctx context.Context, actor commonmodels.Actor) ([]*models.Consultation, error) {
	if !actor.Can(commonmodels.PermViewConsultation) {
		return nil, apperr.Permissionf("actor %d cannot view consultations", actor.ID)
	}
	return s.repo.ListByDoctor(ctx, actor.ID)
}

// Get returns one consultation.
func (s *ConsultationService) Get(ctx context.Context, actor commonmodels.Actor, id int64) (*models.Consultation, error) {
	if !actor.Can(commonmodels.PermViewConsultation) {
		return nil, apperr.Permissionf("actor %d cannot view consultations", actor.ID)
	}
	return s.repo.GetByID(ctx, id)
}

// getOwned loads a consultation and hides it from anyone but its doctor.
func (s *ConsultationService) getOwned(ctx context.Context, actor commonmodels.Actor, id int64) (*models.Consultation, error) {
	cons, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cons.DoctorID != actor.ID {
		return nil, apperr.NotFoundf("consultation %d", id)
	}
	return cons, nil
}

// AttachTranscript stores the transcript produced by the transcription
// gateway and marks the consultation completed.
func (s *ConsultationService) AttachTranscript(ctx context.Context, actor commonmodels.Actor, id int64, transcript, modelUsed string) (*models.Consultation, error) {
	if transcript == "" {
		return nil, apperr.Validationf("transcript must not be empty")
	}

	cons, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.SetTranscript(ctx, id, transcript, modelUsed, models.StatusCompleted, now); err != nil {
		return nil, err
	}

	cons.Transcript = &transcript
	cons.ModelUsed = &modelUsed
	cons.Status = models.StatusCompleted
	cons.UpdatedAt = now
	return cons, nil
}

// Summarize sends the transcript through the chat gateway and stores the
// structured summary. Re-summarizing is allowed; a missing transcript is
// not.
func (s *ConsultationService) Summarize(ctx context.Context, actor commonmodels.Actor, id int64) (string, error) {
	cons, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if cons.Transcript == nil || *cons.Transcript == "" {
		return "", apperr.Validationf("no transcript available for summarization")
	}

	summary, err := s.chat.ChatComplete(ctx, gateway.ChatParams{
		Model:       summarizeModel,
		System:      summarizeSystemPrompt,
		User:        "Here is the consultation transcript to analyze:\n\n" + *cons.Transcript,
		Temperature: summarizeTemperature,
		MaxTokens:   summarizeMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.SetSummary(ctx, id, summary, s.now()); err != nil {
		return "", err
	}
	return summary, nil
}

// Complete closes the consultation and cascades completion to its queue
// entry. Completing twice is a state error, not a silent no-op.
func (s *ConsultationService) Complete(ctx context.Context, actor commonmodels.Actor, id int64) error {
	if !actor.Can(commonmodels.PermProcessQueue) {
		return apperr.Permissionf("actor %d cannot complete consultations", actor.ID)
	}

	cons, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if cons.Status == models.StatusCompleted {
		return apperr.Statef("consultation %d is already completed", id)
	}

	return s.repo.Complete(ctx, id, s.now())
}
