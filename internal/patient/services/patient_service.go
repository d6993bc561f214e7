package services

import (
	"context"
	"time"

	commonmodels "github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/patient/models"
	"github.com/clinicapp/clinic-backend/internal/patient/repositories"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

// PatientService owns patient registration and the delete guard.
type PatientService struct {
	repo repositories.Repository

	now func() time.Time
}

func NewPatientService(repo repositories.Repository) *PatientService {
	return &PatientService{repo: repo, now: time.Now}
}

// SetNow overrides the service clock.
func (s *PatientService) SetNow(now func() time.Time) {
	s.now = now
}

func validatePatient(name string, age int, gender string) error {
	if name == "" {
		return apperr.Validationf("name is required")
	}
	if len(name) > 255 {
		return apperr.Validationf("name must be at most 255 characters")
	}
	if age < 0 || age > 130 {
		return apperr.Validationf("age must be between 0 and 130")
	}
	switch gender {
	case "male", "female", "other":
	default:
		return apperr.Validationf("gender must be male, female or other")
	}
	return nil
}

// RegisterResult is a new patient plus the draft consultation opened for it.
type RegisterResult struct {
	Patient        *models.Patient `json:"patient"`
	ConsultationID int64           `json:"consultation_id"`
}

// Register creates the patient and automatically opens a draft consultation
// for the acting doctor.
func (s *PatientService) Register(ctx context.Context, actor commonmodels.Actor, name string, age int, gender string) (*RegisterResult, error) {
	if err := validatePatient(name, age, gender); err != nil {
		return nil, err
	}

	p := &models.Patient{Name: name, Age: age, Gender: gender}
	consultationID, err := s.repo.CreateWithConsultation(ctx, p, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Patient: p, ConsultationID: consultationID}, nil
}

// List returns all patients with their consultation counts.
func (s *PatientService) List(ctx context.Context) ([]*models.Patient, error) {
	return s.repo.List(ctx)
}

// Get returns the patient together with its consultation history.
func (s *PatientService) Get(ctx context.Context, id int64) (*models.Patient, []*models.ConsultationSummary, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	consultations, err := s.repo.Consultations(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, consultations, nil
}

// Update rewrites the patient's identity attributes.
func (s *PatientService) Update(ctx context.Context, id int64, name string, age int, gender string) (*models.Patient, error) {
	if err := validatePatient(name, age, gender); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.Age = age
	p.Gender = gender
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a patient, refused while consultations reference it.
func (s *PatientService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountConsultations(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Statef("patient %d has %d consultations and cannot be deleted", id, count)
	}

	return s.repo.Delete(ctx, id)
}
