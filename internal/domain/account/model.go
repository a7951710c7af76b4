package account

import (
	"time"

	"github.com/google/uuid"
)

// Roles an account can carry. Admins additionally pass every
// doctor-gated check.
const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// Account maps to the accounts table. The password hash never leaves
// the server.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func validRole(role string) bool {
	return role == RoleDoctor || role == RoleAdmin
}
