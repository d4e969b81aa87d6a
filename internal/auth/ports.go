//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=auth
package auth

import (
	"context"
	"time"

	"libraryapi/internal/user"
)

// UserLookup finds the account a login attempt names.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Blacklist stores revoked token ids until they expire.
type Blacklist interface {
	AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
