package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinicapp/clinic-backend/internal/account/models"
	"github.com/clinicapp/clinic-backend/internal/account/repositories"
	"github.com/clinicapp/clinic-backend/pkg/apperr"
	"github.com/clinicapp/clinic-backend/pkg/utils"
)

const tokenLifetime = 24 * time.Hour

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so login responses do not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountService owns login and staff account creation.
type AccountService struct {
	repo repositories.Repository
}

func NewAccountService(repo repositories.Repository) *AccountService {
	return &AccountService{repo: repo}
}

// LoginResult is the token plus the identity it encodes.
type LoginResult struct {
	Token       string   `json:"token"`
	UserID      int64    `json:"user_id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Authenticate checks the credentials and mints a JWT carrying the user's
// permission names.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	permissions, err := s.repo.PermissionsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Name, user.Role, permissions, time.Now().Add(tokenLifetime))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:       token,
		UserID:      user.ID,
		Name:        user.Name,
		Role:        user.Role,
		Permissions: permissions,
	}, nil
}

// CreateUser hashes the password and stores the account under the given
// role.
func (s *AccountService) CreateUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, apperr.Validationf("name and email are required")
	}
	if len(password) < 8 {
		return nil, apperr.Validationf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Password: string(hash)}
	if err := s.repo.CreateUser(ctx, user, role); err != nil {
		return nil, err
	}
	return user, nil
}
