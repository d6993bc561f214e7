package models

import "time"

// Status is the closed set of queue entry states.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Gender values accepted for a queue entry and the patient created from it.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the three accepted values.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Queue is a walk-in registration waiting to be turned into a patient
// record. PatientID and ConsultationID stay nil until the entry is
// processed, then never change again.
type Queue struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Age            int        `json:"age"`
	Gender         string     `json:"gender"`
	Status         Status     `json:"status"`
	QueueNumber    int        `json:"queue_number"`
	QueueDate      string     `json:"queue_date"`
	PatientID      *int64     `json:"patient_id"`
	ConsultationID *int64     `json:"consultation_id"`
	ProcessedBy    *int64     `json:"processed_by"`
	ProcessedAt    *time.Time `json:"processed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Stats are the per-status counts for today's queue.
type Stats struct {
	Waiting    int `json:"waiting"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}
