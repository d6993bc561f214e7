package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	commonmodels "github.com/clinicapp/clinic-backend/internal/common/models"
	"github.com/clinicapp/clinic-backend/internal/queue/models"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
	"github.com/clinicapp/clinic-backend/ws"
)

// mockRepo is an in-memory Repository. failCreates makes the first N
// CreateWithNextNumber calls lose the number race.
type mockRepo struct {
	entries      map[int64]*models.Queue
	nextID       int64
	nextPatient  int64
	failCreates  int
	processCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: map[int64]*models.Queue{}, nextID: 1, nextPatient: 100}
}

func (m *mockRepo) CreateWithNextNumber(_ context.Context, q *models.Queue) error {
	if m.failCreates > 0 {
		m.failCreates--
		return apperr.Conflictf("queue number taken")
	}
	number := 0
	for _, e := range m.entries {
		if e.QueueDate == q.QueueDate && e.QueueNumber > number {
			number = e.QueueNumber
		}
	}
	q.ID = m.nextID
	m.nextID++
	q.QueueNumber = number + 1
	cp := *q
	m.entries[q.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*models.Queue, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, apperr.NotFoundf("queue entry %d not found", id)
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) ListByDate(_ context.Context, date string) ([]*models.Queue, error) {
	var out []*models.Queue
	for _, e := range m.entries {
		if e.QueueDate == date {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueueNumber < out[j].QueueNumber })
	return out, nil
}

func (m *mockRepo) Process(_ context.Context, q *models.Queue, doctorID int64, now time.Time) (int64, int64, error) {
	e, ok := m.entries[q.ID]
	if !ok {
		return 0, 0, apperr.NotFoundf("queue entry %d not found", q.ID)
	}
	if e.Status != models.StatusWaiting {
		return 0, 0, apperr.Statef("queue entry %d is %s", q.ID, e.Status)
	}
	m.processCalls++
	patientID := m.nextPatient
	consultationID := m.nextPatient + 1
	m.nextPatient += 2
	e.Status = models.StatusInProgress
	e.PatientID = &patientID
	e.ConsultationID = &consultationID
	e.ProcessedBy = &doctorID
	e.ProcessedAt = &now
	return patientID, consultationID, nil
}

func (m *mockRepo) SetStatus(_ context.Context, id int64, current, next models.Status) error {
	e, ok := m.entries[id]
	if !ok {
		return apperr.NotFoundf("queue entry %d not found", id)
	}
	if e.Status != current {
		return apperr.Statef("queue entry %d is %s, expected %s", id, e.Status, current)
	}
	e.Status = next
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return apperr.NotFoundf("queue entry %d not found", id)
	}
	delete(m.entries, id)
	return nil
}

// recordingHub captures broadcast events.
type recordingHub struct {
	events []ws.QueueEvent
}

func (r *recordingHub) BroadcastQueueEvent(ev ws.QueueEvent) {
	r.events = append(r.events, ev)
}

var (
	assistant = commonmodels.Actor{ID: 1, Name: "Ani", Role: "clinic assistant",
		Permissions: []string{commonmodels.PermViewQueue, commonmodels.PermAddQueue}}
	doctor = commonmodels.Actor{ID: 2, Name: "Dr. Budi", Role: "doctor",
		Permissions: []string{commonmodels.PermViewQueue, commonmodels.PermProcessQueue,
			commonmodels.PermCancelQueue, commonmodels.PermViewConsultation}}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(repo *mockRepo, hub Broadcaster) *QueueService {
	s := NewQueueService(repo, hub)
	s.SetNow(fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
	return s
}

func TestEnqueueAssignsSequentialNumbers(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	for i, want := range []int{1, 2, 3} {
		q, err := s.Enqueue(context.Background(), assistant, "Patient", 30+i, models.GenderMale)
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
		if q.QueueNumber != want {
			t.Errorf("queue number = %d, want %d", q.QueueNumber, want)
		}
		if q.Status != models.StatusWaiting {
			t.Errorf("status = %s, want waiting", q.Status)
		}
		if q.QueueDate != "2025-03-10" {
			t.Errorf("queue date = %s, want 2025-03-10", q.QueueDate)
		}
	}
}

func TestEnqueueRetriesOnConflict(t *testing.T) {
	repo := newMockRepo()
	repo.failCreates = 2
	s := newTestService(repo, nil)

	q, err := s.Enqueue(context.Background(), assistant, "Citra", 25, models.GenderFemale)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if q.QueueNumber != 1 {
		t.Errorf("queue number = %d, want 1", q.QueueNumber)
	}
}

func TestEnqueueGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := newMockRepo()
	repo.failCreates = enqueueAttempts
	s := newTestService(repo, nil)

	_, err := s.Enqueue(context.Background(), assistant, "Citra", 25, models.GenderFemale)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestEnqueueValidation(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	cases := []struct {
		name   string
		age    int
		gender string
	}{
		{"", 30, models.GenderMale},
		{"Dewi", -1, models.GenderFemale},
		{"Dewi", 131, models.GenderFemale},
		{"Dewi", 30, "unknown"},
	}
	for _, c := range cases {
		_, err := s.Enqueue(context.Background(), assistant, c.name, c.age, c.gender)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Enqueue(%q, %d, %q) err = %v, want ErrValidation", c.name, c.age, c.gender, err)
		}
	}
	if len(repo.entries) != 0 {
		t.Errorf("invalid registrations persisted %d entries", len(repo.entries))
	}
}

func TestEnqueueRequiresPermission(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	_, err := s.Enqueue(context.Background(), doctor, "Eka", 40, models.GenderMale)
	if !errors.Is(err, apperr.ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("denied enqueue persisted an entry")
	}
}

func TestProcessCreatesPatientAndConsultation(t *testing.T) {
	repo := newMockRepo()
	hub := &recordingHub{}
	s := newTestService(repo, hub)

	q, err := s.Enqueue(context.Background(), assistant, "Fajar", 52, models.GenderMale)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	res, err := s.Process(context.Background(), doctor, q.ID)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Queue.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in_progress", res.Queue.Status)
	}
	if res.PatientID == 0 || res.ConsultationID == 0 {
		t.Errorf("patient/consultation ids = %d/%d, want non-zero", res.PatientID, res.ConsultationID)
	}
	if res.Queue.ProcessedBy == nil || *res.Queue.ProcessedBy != doctor.ID {
		t.Errorf("processed_by = %v, want %d", res.Queue.ProcessedBy, doctor.ID)
	}
	if repo.processCalls != 1 {
		t.Errorf("process calls = %d, want 1", repo.processCalls)
	}

	last := hub.events[len(hub.events)-1]
	if last.Status != string(models.StatusInProgress) || last.QueueID != q.ID {
		t.Errorf("broadcast = %+v, want in_progress for entry %d", last, q.ID)
	}
}

func TestProcessRejectsNonWaiting(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	q, _ := s.Enqueue(context.Background(), assistant, "Gita", 61, models.GenderFemale)
	if _, err := s.Process(context.Background(), doctor, q.ID); err != nil {
		t.Fatalf("first process: %v", err)
	}

	_, err := s.Process(context.Background(), doctor, q.ID)
	if !errors.Is(err, apperr.ErrState) {
		t.Fatalf("second process err = %v, want ErrState", err)
	}
	if repo.processCalls != 1 {
		t.Errorf("process calls = %d, want 1", repo.processCalls)
	}
}

func TestProcessRequiresPermission(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	q, _ := s.Enqueue(context.Background(), assistant, "Hana", 19, models.GenderFemale)
	_, err := s.Process(context.Background(), assistant, q.ID)
	if !errors.Is(err, apperr.ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", err)
	}
	got, _ := repo.GetByID(context.Background(), q.ID)
	if got.Status != models.StatusWaiting {
		t.Errorf("status after denied process = %s, want waiting", got.Status)
	}
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	q, _ := s.Enqueue(context.Background(), assistant, "Indra", 47, models.GenderMale)

	if err := s.Complete(context.Background(), doctor, q.ID); !errors.Is(err, apperr.ErrState) {
		t.Fatalf("complete on waiting err = %v, want ErrState", err)
	}

	if _, err := s.Process(context.Background(), doctor, q.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := s.Complete(context.Background(), doctor, q.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := s.Complete(context.Background(), doctor, q.ID); !errors.Is(err, apperr.ErrState) {
		t.Fatalf("double complete err = %v, want ErrState", err)
	}
}

func TestCancelRejectsTerminalStates(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	q, _ := s.Enqueue(context.Background(), assistant, "Joko", 35, models.GenderMale)
	s.Process(context.Background(), doctor, q.ID)
	s.Complete(context.Background(), doctor, q.ID)

	if err := s.Cancel(context.Background(), doctor, q.ID); !errors.Is(err, apperr.ErrState) {
		t.Fatalf("cancel on completed err = %v, want ErrState", err)
	}
}

func TestCancelWaitingAndInProgress(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	waiting, _ := s.Enqueue(context.Background(), assistant, "Kiki", 28, models.GenderFemale)
	if err := s.Cancel(context.Background(), doctor, waiting.ID); err != nil {
		t.Fatalf("cancel waiting: %v", err)
	}

	active, _ := s.Enqueue(context.Background(), assistant, "Lani", 33, models.GenderFemale)
	s.Process(context.Background(), doctor, active.ID)
	if err := s.Cancel(context.Background(), doctor, active.ID); err != nil {
		t.Fatalf("cancel in_progress: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), active.ID)
	if got.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestDeleteRejectsInProgress(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	q, _ := s.Enqueue(context.Background(), assistant, "Mega", 55, models.GenderFemale)
	s.Process(context.Background(), doctor, q.ID)

	if err := s.Delete(context.Background(), doctor, q.ID); !errors.Is(err, apperr.ErrState) {
		t.Fatalf("delete in_progress err = %v, want ErrState", err)
	}
	if _, err := repo.GetByID(context.Background(), q.ID); err != nil {
		t.Fatalf("entry should still exist: %v", err)
	}
}

func TestDeleteWaitingEntry(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	q, _ := s.Enqueue(context.Background(), assistant, "Nina", 22, models.GenderFemale)
	if err := s.Delete(context.Background(), doctor, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), q.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListTodayStats(t *testing.T) {
	repo := newMockRepo()
	s := newTestService(repo, nil)

	a, _ := s.Enqueue(context.Background(), assistant, "Oka", 41, models.GenderMale)
	b, _ := s.Enqueue(context.Background(), assistant, "Putri", 29, models.GenderFemale)
	s.Enqueue(context.Background(), assistant, "Qori", 36, models.GenderMale)

	s.Process(context.Background(), doctor, a.ID)
	s.Complete(context.Background(), doctor, a.ID)
	s.Process(context.Background(), doctor, b.ID)

	entries, stats, err := s.ListToday(context.Background())
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if e.QueueNumber != i+1 {
			t.Errorf("entries[%d].QueueNumber = %d, want %d", i, e.QueueNumber, i+1)
		}
	}
	want := models.Stats{Waiting: 1, InProgress: 1, Completed: 1, Total: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
