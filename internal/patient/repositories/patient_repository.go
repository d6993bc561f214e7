package repositories

import (
	"context"
	"time"

	"github.com/clinicapp/clinic-backend/internal/patient/models"
)

// Repository is the persistence seam for patient records.
type Repository interface {
	// CreateWithConsultation inserts the patient and a draft consultation
	// for the given doctor in one transaction.
	CreateWithConsultation(ctx context.Context, p *models.Patient, doctorID int64, now time.Time) (consultationID int64, err error)

	// GetByID returns the patient or apperr.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Patient, error)

	// List returns all patients with consultation counts, newest first.
	List(ctx context.Context) ([]*models.Patient, error)

	// Consultations returns the patient's consultations, newest first.
	Consultations(ctx context.Context, patientID int64) ([]*models.ConsultationSummary, error)

	// CountConsultations returns how many consultations reference the
	// patient.
	CountConsultations(ctx context.Context, patientID int64) (int, error)

	// Update rewrites the identity attributes.
	Update(ctx context.Context, p *models.Patient) error

	// Delete hard-deletes the patient.
	Delete(ctx context.Context, id int64) error
}
