package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/user"
)

var ErrInvalidCredentials = apperr.New(apperr.ErrAuthRequired, "Invalid email or password")

// Token is what a successful login returns.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type Service struct {
	secret    string
	ttl       time.Duration
	users     UserLookup
	blacklist Blacklist
}

func NewService(secret string, ttl time.Duration, users UserLookup, blacklist Blacklist) *Service {
	return &Service{secret: secret, ttl: ttl, users: users, blacklist: blacklist}
}

// Login checks the password and issues an access token carrying the
// user's current role.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Unknown emails take as long as bad passwords.
			crypto.VerifyPassword(dummyHash(), password)
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("find user: %w", err)
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return Token{}, ErrInvalidCredentials
	}

	token, _, err := crypto.GenerateToken(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: token, TokenType: "Bearer", ExpiresIn: int(s.ttl.Seconds())}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, actor *access.Actor, token string) error {
	if err := access.RequireActor(actor); err != nil {
		return err
	}
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return apperr.ErrAuthRequired
	}

	expiresAt := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, actor.UserID, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := crypto.HashPassword("not-a-real-password")
	return h
})
