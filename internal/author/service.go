package author

import (
	"context"
	"fmt"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/validate"
)

type Service struct {
	repo       Repository
	publicRead bool
}

func NewService(repo Repository, publicRead bool) *Service {
	return &Service{repo: repo, publicRead: publicRead}
}

func (s *Service) List(ctx context.Context, actor *access.Actor, q Query) ([]Author, int, error) {
	scope, err := access.ListScope(actor, s.publicRead)
	if err != nil {
		return nil, 0, err
	}
	q.CreatedBy = scope
	authors, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	return authors, total, nil
}

// Get returns the author together with the books they wrote.
func (s *Service) Get(ctx context.Context, actor *access.Actor, id int64) (Author, error) {
	if !s.publicRead {
		if err := access.RequireActor(actor); err != nil {
			return Author{}, err
		}
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Author{}, err
	}
	if err := access.AllowView(actor, a.CreatedBy, s.publicRead); err != nil {
		return Author{}, err
	}
	books, err := s.repo.Books(ctx, id)
	if err != nil {
		return Author{}, fmt.Errorf("author %d books: %w", id, err)
	}
	a.Books = books
	return a, nil
}

func (s *Service) Create(ctx context.Context, actor *access.Actor, in Input) (Author, error) {
	if err := access.AllowCreate(actor); err != nil {
		return Author{}, err
	}
	f := in.merge(fields{})
	if err := s.check(ctx, f, 0); err != nil {
		return Author{}, err
	}

	uid := actor.UserID
	a := Author{Name: f.Name, CreatedBy: &uid}
	if err := s.repo.Create(ctx, &a); err != nil {
		return Author{}, fmt.Errorf("create author: %w", err)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, actor *access.Actor, id int64, in Input, partial bool) (Author, error) {
	current, err := s.editable(ctx, actor, id)
	if err != nil {
		return Author{}, err
	}

	base := fields{}
	if partial {
		base.Name = current.Name
	}
	f := in.merge(base)
	if err := s.check(ctx, f, id); err != nil {
		return Author{}, err
	}

	current.Name = f.Name
	if err := s.repo.Update(ctx, &current); err != nil {
		return Author{}, fmt.Errorf("update author %d: %w", id, err)
	}
	return current, nil
}

// CheckUpdate runs the authentication, lookup and permission steps of Update.
func (s *Service) CheckUpdate(ctx context.Context, actor *access.Actor, id int64) error {
	_, err := s.editable(ctx, actor, id)
	return err
}

func (s *Service) editable(ctx context.Context, actor *access.Actor, id int64) (Author, error) {
	if err := access.RequireActor(actor); err != nil {
		return Author{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Author{}, err
	}
	if err := access.AllowUpdate(actor, current.CreatedBy); err != nil {
		return Author{}, err
	}
	return current, nil
}

// Delete removes the author and, with it, every book they wrote.
func (s *Service) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.RequireActor(actor); err != nil {
		return err
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := access.AllowDelete(actor, a.CreatedBy); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete author %d: %w", id, err)
	}
	return nil
}

func (s *Service) check(ctx context.Context, f fields, excludeID int64) error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	taken, err := s.repo.NameTaken(ctx, f.Name, excludeID)
	if err != nil {
		return fmt.Errorf("check author name: %w", err)
	}
	if taken {
		return apperr.FieldError("name", "author with this name already exists.")
	}
	return nil
}
