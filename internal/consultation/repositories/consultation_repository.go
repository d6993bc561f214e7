package repositories

import (
	"context"
	"time"

	"github.com/clinicapp/clinic-backend/internal/consultation/models"
)

// Repository is the persistence seam for consultations.
type Repository interface {
	// Create inserts a new consultation (normally a draft).
	Create(ctx context.Context, cons *models.Consultation) error

	// GetByID returns the consultation or apperr.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Consultation, error)

	// ListByDoctor returns the doctor's consultations, newest first, with
	// the patient name joined in.
	ListByDoctor(ctx context.Context, doctorID int64) ([]*models.Consultation, error)

	// SetTranscript stores transcript and model and moves the status.
	SetTranscript(ctx context.Context, id int64, transcript, modelUsed string, status models.Status, now time.Time) error

	// SetSummary stores the summary and moves the status to summarized.
	SetSummary(ctx context.Context, id int64, summary string, now time.Time) error

	// Complete marks the consultation completed and, in the same
	// transaction, cascades completed to a linked queue entry that is not
	// already completed.
	Complete(ctx context.Context, id int64, now time.Time) error
}
