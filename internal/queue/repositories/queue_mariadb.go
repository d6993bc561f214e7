package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/clinicapp/clinic-backend/internal/queue/models"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

type MariaDBRepository struct {
	DB *sql.DB
}

func NewMariaDBRepository(db *sql.DB) *MariaDBRepository {
	return &MariaDBRepository{DB: db}
}

func (r *MariaDBRepository) CreateWithNextNumber(ctx context.Context, q *models.Queue) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Lock today's rows so two concurrent enqueues cannot observe the same
	// max. The unique key on (queue_date, queue_number) backstops this.
	var maxNumber sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(queue_number), 0) FROM queues WHERE queue_date = ? FOR UPDATE",
		q.QueueDate,
	).Scan(&maxNumber)
	if err != nil {
		tx.Rollback()
		return err
	}

	q.QueueNumber = 1
	if maxNumber.Valid {
		q.QueueNumber = int(maxNumber.Int64) + 1
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO queues
			(name, age, gender, status, queue_number, queue_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.Name, q.Age, q.Gender, q.Status, q.QueueNumber, q.QueueDate, q.CreatedAt)
	if err != nil {
		tx.Rollback()
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return apperr.Conflictf("queue number %d already taken for %s", q.QueueNumber, q.QueueDate)
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}
	q.ID = id

	return tx.Commit()
}

func (r *MariaDBRepository) GetByID(ctx context.Context, id int64) (*models.Queue, error) {
	q := &models.Queue{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, age, gender, status, queue_number, queue_date,
		       patient_id, consultation_id, processed_by, processed_at, created_at
		FROM queues WHERE id = ?
	`, id).Scan(
		&q.ID, &q.Name, &q.Age, &q.Gender, &q.Status, &q.QueueNumber, &q.QueueDate,
		&q.PatientID, &q.ConsultationID, &q.ProcessedBy, &q.ProcessedAt, &q.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("queue entry %d", id)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *MariaDBRepository) ListByDate(ctx context.Context, date string) ([]*models.Queue, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, age, gender, status, queue_number, queue_date,
		       patient_id, consultation_id, processed_by, processed_at, created_at
		FROM queues WHERE queue_date = ?
		ORDER BY queue_number ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Queue
	for rows.Next() {
		q := &models.Queue{}
		if err := rows.Scan(
			&q.ID, &q.Name, &q.Age, &q.Gender, &q.Status, &q.QueueNumber, &q.QueueDate,
			&q.PatientID, &q.ConsultationID, &q.ProcessedBy, &q.ProcessedAt, &q.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	return result, rows.Err()
}

func (r *MariaDBRepository) Process(ctx context.Context, q *models.Queue, doctorID int64, now time.Time) (int64, int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO patients (name, age, gender, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, q.Name, q.Age, q.Gender, now, now)
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}
	patientID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}

	result, err = tx.ExecContext(ctx, `
		INSERT INTO consultations (patient_id, doctor_id, status, created_at, updated_at)
		VALUES (?, ?, 'draft', ?, ?)
	`, patientID, doctorID, now, now)
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}
	consultationID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}

	// The status guard in the WHERE clause makes the transition safe
	// against a concurrent processor.
	updateResult, err := tx.ExecContext(ctx, `
		UPDATE queues
		SET status = 'in_progress', patient_id = ?, consultation_id = ?,
		    processed_by = ?, processed_at = ?
		WHERE id = ? AND status = 'waiting'
	`, patientID, consultationID, doctorID, now, q.ID)
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}
	affected, err := updateResult.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}
	if affected == 0 {
		tx.Rollback()
		return 0, 0, apperr.Statef("queue entry %d is no longer waiting", q.ID)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return patientID, consultationID, nil
}

func (r *MariaDBRepository) SetStatus(ctx context.Context, id int64, current, next models.Status) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE queues SET status = ? WHERE id = ? AND status = ?",
		next, id, current,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Statef("queue entry %d is no longer %s", id, current)
	}
	return nil
}

func (r *MariaDBRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM queues WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFoundf("queue entry %d", id)
	}
	return nil
}
