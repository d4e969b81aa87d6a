package user

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/validate"
)

type Service struct {
	repo   Repository
	photos PhotoStore
	upload validate.UploadPolicy
}

func NewService(repo Repository, photos PhotoStore, upload validate.UploadPolicy) *Service {
	return &Service{repo: repo, photos: photos, upload: upload}
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Username    string `json:"username" validate:"required,min=3,max=150"`
	Password    string `json:"password" validate:"required,password_strength"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// Register creates a Member account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}

	taken, err := s.repo.EmailTaken(ctx, in.Email)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return User{}, ErrEmailTaken
	}
	taken, err = s.repo.UsernameTaken(ctx, in.Username)
	if err != nil {
		return User{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return User{}, ErrUsernameTaken
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := New(in.Email, in.Username, hash)
	u.DateOfBirth = in.DateOfBirth
	if err := s.repo.Create(ctx, &u); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CreateWithRole is Register followed by a role change. It is used by
// operator tooling, which acts outside of any request.
func (s *Service) CreateWithRole(ctx context.Context, in RegisterInput, role access.Role) (User, error) {
	if !role.Valid() {
		return User{}, apperr.FieldError("role", fmt.Sprintf("%q is not a valid role", role))
	}
	u, err := s.Register(ctx, in)
	if err != nil {
		return User{}, err
	}
	if role == u.Role {
		return u, nil
	}
	if err := s.repo.SetRole(ctx, u.ID, role); err != nil {
		return User{}, fmt.Errorf("set role: %w", err)
	}
	u.Role = role
	return u, nil
}

// AssignRole sets the role of the account with the given email. Like
// CreateWithRole it is meant for operator tooling.
func (s *Service) AssignRole(ctx context.Context, email, role string) (User, error) {
	r, err := access.ParseRole(role)
	if err != nil {
		return User{}, apperr.FieldError("role", fmt.Sprintf("%q is not a valid choice.", role))
	}
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return User{}, err
	}
	if err := s.repo.SetRole(ctx, u.ID, r); err != nil {
		return User{}, fmt.Errorf("set role of %s: %w", u.ID, err)
	}
	u.Role = r
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Me returns the calling user.
func (s *Service) Me(ctx context.Context, actor *access.Actor) (User, error) {
	if err := access.RequireActor(actor); err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, actor.UserID)
}

// SetRole changes another user's role. Tokens already issued keep the old
// role until they expire.
func (s *Service) SetRole(ctx context.Context, actor *access.Actor, id, role string) (User, error) {
	target, err := s.manageable(ctx, actor, id)
	if err != nil {
		return User{}, err
	}
	r, err := access.ParseRole(role)
	if err != nil {
		return User{}, apperr.FieldError("role", fmt.Sprintf("%q is not a valid choice.", role))
	}
	if err := s.repo.SetRole(ctx, id, r); err != nil {
		return User{}, fmt.Errorf("set role of %s: %w", id, err)
	}
	target.Role = r
	return target, nil
}

// CheckSetRole runs the authentication, lookup and permission steps of SetRole.
func (s *Service) CheckSetRole(ctx context.Context, actor *access.Actor, id string) error {
	_, err := s.manageable(ctx, actor, id)
	return err
}

func (s *Service) manageable(ctx context.Context, actor *access.Actor, id string) (User, error) {
	if err := access.RequireActor(actor); err != nil {
		return User{}, err
	}
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := access.Require(actor, access.CanManageUsers); err != nil {
		return User{}, err
	}
	return target, nil
}

// SetProfilePhoto checks and stores an uploaded photo for the caller.
func (s *Service) SetProfilePhoto(ctx context.Context, actor *access.Actor, filename string, size int64, body io.Reader) (User, error) {
	if err := access.RequireActor(actor); err != nil {
		return User{}, err
	}
	u, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return User{}, err
	}

	br := bufio.NewReaderSize(body, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return User{}, fmt.Errorf("read upload: %w", err)
	}
	if err := s.upload.Check("photo", filename, size, head); err != nil {
		return User{}, err
	}

	path, err := s.photos.Save(ctx, u.ID, filename, br)
	if err != nil {
		return User{}, fmt.Errorf("store photo: %w", err)
	}
	if err := s.repo.SetProfilePhoto(ctx, u.ID, path); err != nil {
		_ = s.photos.Remove(ctx, path)
		return User{}, fmt.Errorf("set photo: %w", err)
	}
	if previous := u.ProfilePhoto; previous != "" && previous != path {
		_ = s.photos.Remove(ctx, previous)
	}
	u.ProfilePhoto = path
	return u, nil
}
