package user

import (
	"strings"
	"time"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
)

var (
	ErrNotFound      = apperr.New(apperr.ErrNotFound, "user not found")
	ErrEmailTaken    = apperr.New(apperr.ErrConflict, "a user with this email already exists")
	ErrUsernameTaken = apperr.New(apperr.ErrConflict, "a user with this username already exists")
)

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	DateOfBirth  string      `json:"date_of_birth,omitempty"`
	ProfilePhoto string      `json:"profile_photo,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// New is the only way to build a user that has not been stored yet. Every
// new user starts as a Member.
func New(email, username, passwordHash string) User {
	return User{
		Email:        NormalizeEmail(email),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         access.DefaultRole,
	}
}

// Permissions derives the permission set from the role.
func (u User) Permissions() []access.Permission {
	return access.PermissionsFor(u.Role)
}

// Actor returns the user as a caller.
func (u User) Actor() *access.Actor {
	return &access.Actor{UserID: u.ID, Role: u.Role}
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}
