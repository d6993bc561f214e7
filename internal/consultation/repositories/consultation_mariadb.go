package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/clinicapp/clinic-backend/internal/consultation/models"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type MariaDBRepository struct {
	DB *sql.DB
}

func NewMariaDBRepository(db *sql.DB) *MariaDBRepository {
	return &MariaDBRepository{DB: db}
}

func (r *MariaDBRepository) Create(ctx context.Context, cons *models.Consultation) error {
	result, err := r.DB.ExecContext(ctx, `
		INSERT INTO consultations (patient_id, doctor_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, cons.PatientID, cons.DoctorID, cons.Status, cons.CreatedAt, cons.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	cons.ID = id
	return nil
}

func (r *MariaDBRepository) GetByID(ctx context.Context, id int64) (*models.Consultation, error) {
	cons := &models.Consultation{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT c.id, c.patient_id, c.doctor_id, c.status, c.transcript, c.summary,
		       c.audio_path, c.model_used, c.completed_at, c.created_at, c.updated_at,
		       p.name
		FROM consultations c
		JOIN patients p ON p.id = c.patient_id
		WHERE c.id = ?
	`, id).Scan(
		&cons.ID, &cons.PatientID, &cons.DoctorID, &cons.Status, &cons.Transcript,
		&cons.Summary, &cons.AudioPath, &cons.ModelUsed, &cons.CompletedAt,
		&cons.CreatedAt, &cons.UpdatedAt, &cons.PatientName,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("consultation %d", id)
	}
	if err != nil {
		return nil, err
	}
	return cons, nil
}

func (r *MariaDBRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*models.Consultation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.patient_id, c.doctor_id, c.status, c.transcript, c.summary,
		       c.audio_path, c.model_used, c.completed_at, c.created_at, c.updated_at,
		       p.name
		FROM consultations c
		JOIN patients p ON p.id = c.patient_id
		WHERE c.doctor_id = ?
		ORDER BY c.created_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Consultation
	for rows.Next() {
		cons := &models.Consultation{}
		if err := rows.Scan(
			&cons.ID, &cons.PatientID, &cons.DoctorID, &cons.Status, &cons.Transcript,
			&cons.Summary, &cons.AudioPath, &cons.ModelUsed, &cons.CompletedAt,
			&cons.CreatedAt, &cons.UpdatedAt, &cons.PatientName,
		); err != nil {
			return nil, err
		}
		result = append(result, cons)
	}
	return result, rows.Err()
}

func (r *MariaDBRepository) SetTranscript(ctx context.Context, id int64, transcript, modelUsed string, status models.Status, now time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE consultations
		SET transcript = ?, model_used = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, transcript, modelUsed, status, now, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFoundf("consultation %d", id)
	}
	return nil
}

func (r *MariaDBRepository) SetSummary(ctx context.Context, id int64, summary string, now time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE consultations
		SET summary = ?, status = 'summarized', updated_at = ?
		WHERE id = ?
	`, summary, now, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFoundf("consultation %d", id)
	}
	return nil
}

func (r *MariaDBRepository) Complete(ctx context.Context, id int64, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE consultations
		SET status = 'completed', completed_at = ?, updated_at = ?
		WHERE id = ? AND status != 'completed'
	`, now, now, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return apperr.Statef("consultation %d is already completed", id)
	}

	// Cascade to the linked queue entry, if one exists and is still open.
	if _, err := tx.ExecContext(ctx, `
		UPDATE queues SET status = 'completed'
		WHERE consultation_id = ? AND status != 'completed'
	`, id); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
