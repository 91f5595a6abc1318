package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an application operator who owns accounts and businesses.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may act across ownership boundaries.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
