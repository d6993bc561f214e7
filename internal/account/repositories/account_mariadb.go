package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/clinicapp/clinic-backend/internal/account/models"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

type MariaDBRepository struct {
	DB *sql.DB
}

func NewMariaDBRepository(db *sql.DB) *MariaDBRepository {
	return &MariaDBRepository{DB: db}
}

func (r *MariaDBRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.password, COALESCE(ro.name, ''), u.created_at
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles ro ON ro.id = ur.role_id
		WHERE u.email = ?
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user %s", email)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *MariaDBRepository) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = ?
		ORDER BY p.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		permissions = append(permissions, name)
	}
	return permissions, rows.Err()
}

func (r *MariaDBRepository) CreateUser(ctx context.Context, user *models.User, roleName string) error {
	var roleID int64
	err := r.DB.QueryRowContext(ctx, "SELECT id FROM roles WHERE name = ?", roleName).Scan(&roleID)
	if err == sql.ErrNoRows {
		return apperr.NotFoundf("role %s", roleName)
	}
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO users (name, email, password, created_at)
		VALUES (?, ?, ?, ?)
	`, user.Name, user.Email, user.Password, now)
	if err != nil {
		tx.Rollback()
		return err
	}
	userID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID,
	); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	user.ID = userID
	user.Role = roleName
	user.CreatedAt = now
	return nil
}
