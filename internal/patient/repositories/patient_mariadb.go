package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/clinicapp/clinic-backend/internal/patient/models"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type MariaDBRepository struct {
	DB *sql.DB
}

func NewMariaDBRepository(db *sql.DB) *MariaDBRepository {
	return &MariaDBRepository{DB: db}
}

func (r *MariaDBRepository) CreateWithConsultation(ctx context.Context, p *models.Patient, doctorID int64, now time.Time) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO patients (name, age, gender, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Age, p.Gender, now, now)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	patientID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	result, err = tx.ExecContext(ctx, `
		INSERT INTO consultations (patient_id, doctor_id, status, created_at, updated_at)
		VALUES (?, ?, 'draft', ?, ?)
	`, patientID, doctorID, now, now)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	consultationID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	p.ID = patientID
	p.CreatedAt = now
	p.UpdatedAt = now
	return consultationID, nil
}

func (r *MariaDBRepository) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	p := &models.Patient{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, age, gender, created_at, updated_at
		FROM patients WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("patient %d", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *MariaDBRepository) List(ctx context.Context) ([]*models.Patient, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, p.name, p.age, p.gender, p.created_at, p.updated_at,
		       COUNT(c.id) AS consultations_count
		FROM patients p
		LEFT JOIN consultations c ON c.patient_id = p.id
		GROUP BY p.id, p.name, p.age, p.gender, p.created_at, p.updated_at
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Patient
	for rows.Next() {
		p := &models.Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.CreatedAt, &p.UpdatedAt, &p.ConsultationsCount); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *MariaDBRepository) Consultations(ctx context.Context, patientID int64) ([]*models.ConsultationSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.doctor_id, u.name, c.status, c.created_at
		FROM consultations c
		JOIN users u ON u.id = c.doctor_id
		WHERE c.patient_id = ?
		ORDER BY c.created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.ConsultationSummary
	for rows.Next() {
		cs := &models.ConsultationSummary{}
		if err := rows.Scan(&cs.ID, &cs.DoctorID, &cs.DoctorName, &cs.Status, &cs.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cs)
	}
	return result, rows.Err()
}

func (r *MariaDBRepository) CountConsultations(ctx context.Context, patientID int64) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM consultations WHERE patient_id = ?", patientID,
	).Scan(&count)
	return count, err
}

func (r *MariaDBRepository) Update(ctx context.Context, p *models.Patient) error {
	// Existence is checked by the service; an unchanged row also reports
	// zero affected rows, so that count is not a reliable signal here.
	_, err := r.DB.ExecContext(ctx, `
		UPDATE patients SET name = ?, age = ?, gender = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Age, p.Gender, p.UpdatedAt, p.ID)
	return err
}

func (r *MariaDBRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM patients WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFoundf("patient %d", id)
	}
	return nil
}
