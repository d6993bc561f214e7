package models

import "time"

// Status is the closed set of consultation states.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusCompleted  Status = "completed"
	StatusSummarized Status = "summarized"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusCompleted, StatusSummarized:
		return true
	}
	return false
}

// Consultation is one clinical encounter between a patient and a doctor.
type Consultation struct {
	ID          int64      `json:"id"`
	PatientID   int64      `json:"patient_id"`
	DoctorID    int64      `json:"doctor_id"`
	Status      Status     `json:"status"`
	Transcript  *string    `json:"transcript"`
	Summary     *string    `json:"summary"`
	AudioPath   *string    `json:"audio_path"`
	ModelUsed   *string    `json:"model_used"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// PatientName is filled by list/detail queries.
	PatientName string `json:"patient_name,omitempty"`
}
