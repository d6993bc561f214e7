package services

import (
	"context"
	"errors"
	"time"

	commonmodels "github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/queue/models"
	"github.com/clinicapp/clinic-backend/internal/queue/repositories"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
	"github.com/clinicapp/clinic-backend/ws"
)

// enqueueAttempts bounds the retry loop when a concurrent enqueue wins the
// race for a queue number.
const enqueueAttempts = 3

// Broadcaster pushes queue transitions to the live board. The websocket hub
// implements it; tests plug in a recorder.
type Broadcaster interface {
	BroadcastQueueEvent(ev ws.QueueEvent)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastQueueEvent(ws.QueueEvent) {}

// QueueService owns the lifecycle of one day's walk-in queue.
type QueueService struct {
	repo repositories.Repository
	hub  Broadcaster

	// now is injectable so "today" is testable.
	now func() time.Time
}

func NewQueueService(repo repositories.Repository, hub Broadcaster) *QueueService {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	return &QueueService{repo: repo, hub: hub, now: time.Now}
}

// SetNow overrides the service clock.
func (s *QueueService) SetNow(now func() time.Time) {
	s.now = now
}

// ProcessResult reports what processing a queue entry created.
type ProcessResult struct {
	Queue          *models.Queue `json:"queue"`
	PatientID      int64         `json:"patient_id"`
	ConsultationID int64         `json:"consultation_id"`
}

func validateRegistration(name string, age int, gender string) error {
	if name == "" {
		return apperr.Validationf("name is required")
	}
	if len(name) > 255 {
		return apperr.Validationf("name must be at most 255 characters")
	}
	if age < 0 || age > 130 {
		return apperr.Validationf("age must be between 0 and 130")
	}
	if !models.ValidGender(gender) {
		return apperr.Validationf("gender must be male, female or other")
	}
	return nil
}

// Enqueue registers a walk-in with the next queue number for today. The
// number allocation retries when a concurrent caller takes the same slot.
func (s *QueueService) Enqueue(ctx context.Context, actor commonmodels.Actor, name string, age int, gender string) (*models.Queue, error) {
	if !actor.Can(commonmodels.PermAddQueue) {
		return nil, apperr.Permissionf("actor %d cannot add to the queue", actor.ID)
	}
	if err := validateRegistration(name, age, gender); err != nil {
		return nil, err
	}

	now := s.now()
	var lastErr error
	for attempt := 0; attempt < enqueueAttempts; attempt++ {
		q := &models.Queue{
			Name:      name,
			Age:       age,
			Gender:    gender,
			Status:    models.StatusWaiting,
			QueueDate: now.Format("2006-01-02"),
			CreatedAt: now,
		}
		err := s.repo.CreateWithNextNumber(ctx, q)
		if err == nil {
			s.hub.BroadcastQueueEvent(ws.QueueEvent{
				QueueID:     q.ID,
				QueueNumber: q.QueueNumber,
				Status:      string(q.Status),
			})
			return q, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Process turns a waiting entry into a patient plus draft consultation and
// marks it in_progress. The caller becomes the consultation's doctor.
func (s *QueueService) Process(ctx context.Context, actor commonmodels.Actor, queueID int64) (*ProcessResult, error) {
	if !actor.Can(commonmodels.PermProcessQueue) {
		return nil, apperr.Permissionf("actor %d cannot process the queue", actor.ID)
	}

	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.StatusWaiting {
		return nil, apperr.Statef("queue entry %d is %s, only waiting entries can be processed", queueID, q.Status)
	}

	now := s.now()
	patientID, consultationID, err := s.repo.Process(ctx, q, actor.ID, now)
	if err != nil {
		return nil, err
	}

	q.Status = models.StatusInProgress
	q.PatientID = &patientID
	q.ConsultationID = &consultationID
	q.ProcessedBy = &actor.ID
	q.ProcessedAt = &now

	s.hub.BroadcastQueueEvent(ws.QueueEvent{
		QueueID:     q.ID,
		QueueNumber: q.QueueNumber,
		Status:      string(q.Status),
	})

	return &ProcessResult{Queue: q, PatientID: patientID, ConsultationID: consultationID}, nil
}

// Complete closes an in_progress entry.
func (s *QueueService) Complete(ctx context.Context, actor commonmodels.Actor, queueID int64) error {
	if !actor.Can(commonmodels.PermProcessQueue) {
		return apperr.Permissionf("actor %d cannot complete the queue", actor.ID)
	}

	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		return err
	}
	if q.Status != models.StatusInProgress {
		return apperr.Statef("queue entry %d is %s, only in_progress entries can be completed", queueID, q.Status)
	}

	if err := s.repo.SetStatus(ctx, queueID, models.StatusInProgress, models.StatusCompleted); err != nil {
		return err
	}

	s.hub.BroadcastQueueEvent(ws.QueueEvent{
		QueueID:     q.ID,
		QueueNumber: q.QueueNumber,
		Status:      string(models.StatusCompleted),
	})
	return nil
}

// Cancel moves a waiting or in_progress entry to cancelled.
func (s *QueueService) Cancel(ctx context.Context, actor commonmodels.Actor, queueID int64) error {
	if !actor.Can(commonmodels.PermCancelQueue) {
		return apperr.Permissionf("actor %d cannot cancel the queue", actor.ID)
	}

	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		return err
	}
	if q.Status.Terminal() {
		return apperr.Statef("queue entry %d is already %s", queueID, q.Status)
	}

	if err := s.repo.SetStatus(ctx, queueID, q.Status, models.StatusCancelled); err != nil {
		return err
	}

	s.hub.BroadcastQueueEvent(ws.QueueEvent{
		QueueID:     q.ID,
		QueueNumber: q.QueueNumber,
		Status:      string(models.StatusCancelled),
	})
	return nil
}

// Delete removes an entry that is not currently being processed.
func (s *QueueService) Delete(ctx context.Context, actor commonmodels.Actor, queueID int64) error {
	if !actor.Can(commonmodels.PermCancelQueue) {
		return apperr.Permissionf("actor %d cannot delete from the queue", actor.ID)
	}

	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		return err
	}
	if q.Status == models.StatusInProgress {
		return apperr.Statef("queue entry %d is in progress and cannot be deleted", queueID)
	}

	return s.repo.Delete(ctx, queueID)
}

// ListToday returns all of today's entries ordered by queue number plus the
// per-status counts.
func (s *QueueService) ListToday(ctx context.Context) ([]*models.Queue, models.Stats, error) {
	entries, err := s.repo.ListByDate(ctx, s.now().Format("2006-01-02"))
	if err != nil {
		return nil, models.Stats{}, err
	}

	var stats models.Stats
	for _, q := range entries {
		switch q.Status {
		case models.StatusWaiting:
			stats.Waiting++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		}
	}
	stats.Total = len(entries)
	return entries, stats, nil
}
