package library

import (
	"context"
	"errors"
	"fmt"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/validate"
)

// Service applies the library rules: creation needs can_create, changes to
// a library or its books need can_edit, deletion needs can_delete.
type Service struct {
	repo       Repository
	publicRead bool
}

func NewService(repo Repository, publicRead bool) *Service {
	return &Service{repo: repo, publicRead: publicRead}
}

func (s *Service) canRead(actor *access.Actor) error {
	if s.publicRead {
		return nil
	}
	return access.RequireActor(actor)
}

func (s *Service) List(ctx context.Context, actor *access.Actor, limit, offset int) ([]Library, int, error) {
	if err := s.canRead(actor); err != nil {
		return nil, 0, err
	}
	libs, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list libraries: %w", err)
	}
	return libs, total, nil
}

// Get returns the library with its books and librarian.
func (s *Service) Get(ctx context.Context, actor *access.Actor, id int64) (Detail, error) {
	if err := s.canRead(actor); err != nil {
		return Detail{}, err
	}
	return s.detail(ctx, id)
}

func (s *Service) detail(ctx context.Context, id int64) (Detail, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	books, err := s.repo.Books(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("library %d books: %w", id, err)
	}
	librarian, err := s.repo.LibrarianOf(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("library %d librarian: %w", id, err)
	}
	return Detail{Library: l, Books: books, Librarian: librarian}, nil
}

func (s *Service) Create(ctx context.Context, actor *access.Actor, in Input) (Detail, error) {
	if err := access.AllowCreate(actor); err != nil {
		return Detail{}, err
	}
	f := libraryFields{}
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.BookIDs != nil {
		f.BookIDs = dedupe(*in.BookIDs)
	}
	if err := s.check(ctx, f); err != nil {
		return Detail{}, err
	}

	l := Library{Name: f.Name, BookIDs: f.BookIDs}
	if err := s.repo.Create(ctx, &l); err != nil {
		return Detail{}, fmt.Errorf("create library: %w", err)
	}
	return s.detail(ctx, l.ID)
}

// Update renames the library and, when BookIDs is sent, replaces its books.
func (s *Service) Update(ctx context.Context, actor *access.Actor, id int64, in Input) (Detail, error) {
	current, err := s.editable(ctx, actor, id)
	if err != nil {
		return Detail{}, err
	}

	f := libraryFields{BookIDs: current.BookIDs}
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.BookIDs != nil {
		f.BookIDs = dedupe(*in.BookIDs)
	}
	if err := s.check(ctx, f); err != nil {
		return Detail{}, err
	}

	current.Name = f.Name
	current.BookIDs = f.BookIDs
	if err := s.repo.Update(ctx, &current); err != nil {
		return Detail{}, fmt.Errorf("update library %d: %w", id, err)
	}
	return s.detail(ctx, id)
}

// CheckUpdate runs the authentication, lookup and permission steps of Update.
func (s *Service) CheckUpdate(ctx context.Context, actor *access.Actor, id int64) error {
	_, err := s.editable(ctx, actor, id)
	return err
}

func (s *Service) editable(ctx context.Context, actor *access.Actor, id int64) (Library, error) {
	if err := access.RequireActor(actor); err != nil {
		return Library{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Library{}, err
	}
	if err := access.Require(actor, access.CanEdit); err != nil {
		return Library{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.RequireActor(actor); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := access.Require(actor, access.CanDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete library %d: %w", id, err)
	}
	return nil
}

// AddBook links a book to a library. Linking a book twice is a no-op.
func (s *Service) AddBook(ctx context.Context, actor *access.Actor, libraryID, bookID int64) (Detail, error) {
	if err := s.linkPreconditions(ctx, actor, libraryID); err != nil {
		return Detail{}, err
	}
	missing, err := s.repo.MissingBooks(ctx, []int64{bookID})
	if err != nil {
		return Detail{}, fmt.Errorf("check book %d: %w", bookID, err)
	}
	if len(missing) > 0 {
		return Detail{}, ErrBookNotFound
	}
	if err := s.repo.AddBook(ctx, libraryID, bookID); err != nil {
		return Detail{}, fmt.Errorf("add book %d to library %d: %w", bookID, libraryID, err)
	}
	return s.detail(ctx, libraryID)
}

func (s *Service) RemoveBook(ctx context.Context, actor *access.Actor, libraryID, bookID int64) error {
	if err := s.linkPreconditions(ctx, actor, libraryID); err != nil {
		return err
	}
	if err := s.repo.RemoveBook(ctx, libraryID, bookID); err != nil {
		if errors.Is(err, ErrBookNotInLibrary) {
			return err
		}
		return fmt.Errorf("remove book %d from library %d: %w", bookID, libraryID, err)
	}
	return nil
}

func (s *Service) linkPreconditions(ctx context.Context, actor *access.Actor, libraryID int64) error {
	if err := access.RequireActor(actor); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, libraryID); err != nil {
		return err
	}
	return access.Require(actor, access.CanEdit)
}

func (s *Service) check(ctx context.Context, f libraryFields) error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	if len(f.BookIDs) == 0 {
		return nil
	}
	missing, err := s.repo.MissingBooks(ctx, f.BookIDs)
	if err != nil {
		return fmt.Errorf("check books: %w", err)
	}
	verr := apperr.NewValidation()
	for _, id := range missing {
		verr.Add("book_ids", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return verr.Err()
}

func (s *Service) ListLibrarians(ctx context.Context, actor *access.Actor, limit, offset int) ([]Librarian, int, error) {
	if err := s.canRead(actor); err != nil {
		return nil, 0, err
	}
	out, total, err := s.repo.ListLibrarians(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list librarians: %w", err)
	}
	return out, total, nil
}

func (s *Service) GetLibrarian(ctx context.Context, actor *access.Actor, id int64) (Librarian, error) {
	if err := s.canRead(actor); err != nil {
		return Librarian{}, err
	}
	return s.repo.GetLibrarian(ctx, id)
}

// CreateLibrarian assigns a librarian to a library that has none yet.
func (s *Service) CreateLibrarian(ctx context.Context, actor *access.Actor, in LibrarianInput) (Librarian, error) {
	if err := access.AllowCreate(actor); err != nil {
		return Librarian{}, err
	}
	f := librarianFields{}
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.LibraryID != nil {
		f.LibraryID = *in.LibraryID
	}
	if err := validate.Struct(f); err != nil {
		return Librarian{}, err
	}

	if _, err := s.repo.Get(ctx, f.LibraryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Librarian{}, apperr.FieldError("library", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", f.LibraryID))
		}
		return Librarian{}, fmt.Errorf("check library: %w", err)
	}
	existing, err := s.repo.LibrarianOf(ctx, f.LibraryID)
	if err != nil {
		return Librarian{}, fmt.Errorf("check librarian: %w", err)
	}
	if existing != nil {
		return Librarian{}, apperr.FieldError("library", "librarian with this library already exists.")
	}

	l := Librarian{Name: f.Name, LibraryID: f.LibraryID}
	if err := s.repo.CreateLibrarian(ctx, &l); err != nil {
		return Librarian{}, fmt.Errorf("create librarian: %w", err)
	}
	return l, nil
}

func (s *Service) DeleteLibrarian(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.RequireActor(actor); err != nil {
		return err
	}
	if _, err := s.repo.GetLibrarian(ctx, id); err != nil {
		return err
	}
	if err := access.Require(actor, access.CanDelete); err != nil {
		return err
	}
	if err := s.repo.DeleteLibrarian(ctx, id); err != nil {
		return fmt.Errorf("delete librarian %d: %w", id, err)
	}
	return nil
}
