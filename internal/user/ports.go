package user

import (
	"context"
	"io"

	"libraryapi/internal/access"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=user

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	SetRole(ctx context.Context, id string, role access.Role) error
	SetProfilePhoto(ctx context.Context, id, path string) error
}

// PhotoStore persists uploaded profile photos and returns the stored path.
type PhotoStore interface {
	Save(ctx context.Context, userID, filename string, r io.Reader) (string, error)
	// Remove deletes a stored photo. Missing files are not an error.
	Remove(ctx context.Context, path string) error
}
