package book

import (
	"context"
	"fmt"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/validate"
)

// Service provides book-related business logic. Every operation takes the
// caller explicitly; nil is an anonymous caller.
type Service struct {
	repo       Repository
	publicRead bool
}

// NewService creates a new book service. With publicRead set, anonymous
// callers may list and view every book.
func NewService(repo Repository, publicRead bool) *Service {
	return &Service{repo: repo, publicRead: publicRead}
}

// List returns one page of books matching q and the total match count.
func (s *Service) List(ctx context.Context, actor *access.Actor, q Query) ([]Book, int, error) {
	scope, err := access.ListScope(actor, s.publicRead)
	if err != nil {
		return nil, 0, err
	}
	q.CreatedBy = scope
	if len(q.Ordering) == 0 {
		q.Ordering = DefaultOrdering
	}
	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}

func (s *Service) Get(ctx context.Context, actor *access.Actor, id int64) (Book, error) {
	if !s.publicRead {
		if err := access.RequireActor(actor); err != nil {
			return Book{}, err
		}
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if err := access.AllowView(actor, b.CreatedBy, s.publicRead); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Create validates in as a full record and stores it. published_date
// defaults to Jan 1 of publication_year.
func (s *Service) Create(ctx context.Context, actor *access.Actor, in Input) (Book, error) {
	if err := access.AllowCreate(actor); err != nil {
		return Book{}, err
	}

	f := in.merge(fields{})
	if err := s.check(ctx, f, 0); err != nil {
		return Book{}, err
	}

	var b Book
	f.apply(&b)
	if b.PublishedDate == "" {
		b.PublishedDate = DefaultPublishedDate(b.PublicationYear)
	}
	uid := actor.UserID
	b.CreatedBy = &uid
	b.LastModifiedBy = &uid

	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	return s.repo.Get(ctx, b.ID)
}

// Update applies in to book id. With partial unset every required field must
// be present, as for a create.
func (s *Service) Update(ctx context.Context, actor *access.Actor, id int64, in Input, partial bool) (Book, error) {
	current, err := s.editable(ctx, actor, id)
	if err != nil {
		return Book{}, err
	}

	base := fields{}
	if partial {
		base = fieldsOf(current)
	}
	f := in.merge(base)
	if err := s.check(ctx, f, id); err != nil {
		return Book{}, err
	}

	updated := current
	f.apply(&updated)
	if updated.PublishedDate == "" {
		updated.PublishedDate = DefaultPublishedDate(updated.PublicationYear)
	}
	uid := actor.UserID
	updated.LastModifiedBy = &uid

	if err := s.repo.Update(ctx, &updated); err != nil {
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return s.repo.Get(ctx, id)
}

// CheckUpdate runs the authentication, lookup and permission steps of Update.
func (s *Service) CheckUpdate(ctx context.Context, actor *access.Actor, id int64) error {
	_, err := s.editable(ctx, actor, id)
	return err
}

func (s *Service) editable(ctx context.Context, actor *access.Actor, id int64) (Book, error) {
	if err := access.RequireActor(actor); err != nil {
		return Book{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if err := access.AllowUpdate(actor, current.CreatedBy); err != nil {
		return Book{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.RequireActor(actor); err != nil {
		return err
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := access.AllowDelete(actor, b.CreatedBy); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

// BulkDelete removes the listed books and returns how many were deleted.
// Ids that no longer exist are skipped.
func (s *Service) BulkDelete(ctx context.Context, actor *access.Actor, ids []int64) (int, error) {
	if err := access.AllowBulkDelete(actor); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperr.FieldError("ids", "This list may not be empty.")
	}
	for _, id := range ids {
		if id <= 0 {
			return 0, apperr.FieldError("ids", fmt.Sprintf("Invalid id %d.", id))
		}
	}
	n, err := s.repo.DeleteMany(ctx, dedupe(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete books: %w", err)
	}
	return n, nil
}

// check runs field validation, then the store-backed author and title rules.
func (s *Service) check(ctx context.Context, f fields, excludeID int64) error {
	if err := validate.Struct(f); err != nil {
		return err
	}

	verr := apperr.NewValidation()
	exists, err := s.repo.AuthorExists(ctx, f.AuthorID)
	if err != nil {
		return fmt.Errorf("check author: %w", err)
	}
	if !exists {
		verr.Add("author", fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(f.AuthorID)))
	}

	taken, err := s.repo.TitleTaken(ctx, f.Title, excludeID)
	if err != nil {
		return fmt.Errorf("check title: %w", err)
	}
	if taken {
		verr.Add("title", "book with this title already exists.")
	}
	return verr.Err()
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
