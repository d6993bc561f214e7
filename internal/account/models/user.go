package models

import "time"

// Role names seeded with the schema.
const (
	RoleClinicAssistant = "clinic assistant"
	RoleDoctor          = "doctor"
)

// User is a staff account. Password holds the bcrypt hash.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
