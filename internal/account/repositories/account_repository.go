package repositories

import (
	"context"

	"github.com/clinicapp/clinic-backend/internal/account/models"
)

// Repository is the persistence seam for staff accounts and their
// role/permission assignments.
type Repository interface {
	// GetUserByEmail returns the user with its role name joined in, or
	// apperr.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// PermissionsForUser returns the permission names granted through the
	// user's roles.
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)

	// CreateUser inserts the user and assigns the named role, which must
	// already exist.
	CreateUser(ctx context.Context, user *models.User, roleName string) error
}
