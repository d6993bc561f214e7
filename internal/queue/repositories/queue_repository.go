package repositories

import (
	"context"
	"time"

	"github.com/clinicapp/clinic-backend/internal/queue/models"
)

// Repository is the persistence seam for the daily queue. The mariadb
// implementation owns the transactional pieces: queue number allocation and
// the process step that materialises a patient and a consultation.
type Repository interface {
	// CreateWithNextNumber inserts q with the next queue number for
	// q.QueueDate. Allocation and insert run in one transaction; a lost
	// race on the (queue_date, queue_number) unique key surfaces as
	// apperr.ErrConflict so the caller can retry.
	CreateWithNextNumber(ctx context.Context, q *models.Queue) error

	// GetByID returns the entry or apperr.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Queue, error)

	// ListByDate returns the entries whose queue_date equals date
	// (YYYY-MM-DD), ordered by queue number ascending.
	ListByDate(ctx context.Context, date string) ([]*models.Queue, error)

	// Process atomically creates the patient and draft consultation from
	// the entry's data and moves the entry waiting -> in_progress. It
	// returns apperr.ErrState when the entry is no longer waiting by the
	// time the update runs.
	Process(ctx context.Context, q *models.Queue, doctorID int64, now time.Time) (patientID, consultationID int64, err error)

	// SetStatus moves the entry from the expected current status to next,
	// returning apperr.ErrState when another writer got there first.
	SetStatus(ctx context.Context, id int64, current, next models.Status) error

	// Delete hard-deletes the entry.
	Delete(ctx context.Context, id int64) error
}
