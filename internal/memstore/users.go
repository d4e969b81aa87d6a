package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"libraryapi/internal/access"
	"libraryapi/internal/user"
)

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}
	now := r.s.now()
	u.ID, u.CreatedAt, u.UpdatedAt = uuid.NewString(), now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) SetRole(_ context.Context, id string, role access.Role) error {
	return r.update(id, func(u *user.User) { u.Role = role })
}

func (r *UserRepo) SetProfilePhoto(_ context.Context, id, path string) error {
	return r.update(id, func(u *user.User) { u.ProfilePhoto = path })
}

func (r *UserRepo) update(id string, fn func(*user.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

// BlacklistRepo is the token blacklist used when neither Redis nor Postgres
// is configured. Entries are dropped once they expire.
type BlacklistRepo struct {
	s *Store
}

func (r *BlacklistRepo) AddToBlacklist(_ context.Context, jti, _ string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for k, exp := range r.s.revoked {
		if !exp.After(now) {
			delete(r.s.revoked, k)
		}
	}
	if expiresAt.After(now) {
		r.s.revoked[jti] = expiresAt
	}
	return nil
}

func (r *BlacklistRepo) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	exp, ok := r.s.revoked[jti]
	return ok && exp.After(r.s.now()), nil
}
