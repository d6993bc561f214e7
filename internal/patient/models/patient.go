package models

import "time"

// Patient is a registered patient record.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ConsultationsCount is filled by list queries.
	ConsultationsCount int `json:"consultations_count"`
}

// ConsultationSummary is the slim consultation row shown on a patient's
// detail page.
type ConsultationSummary struct {
	ID         int64     `json:"id"`
	DoctorID   int64     `json:"doctor_id"`
	DoctorName string    `json:"doctor_name"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
