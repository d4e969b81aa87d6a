package library

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=library

// Repository defines library and librarian storage. Deleting a library
// removes its book links and its librarian, never the books.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Library, int, error)
	Get(ctx context.Context, id int64) (Library, error)
	Books(ctx context.Context, libraryID int64) ([]BookRef, error)
	MissingBooks(ctx context.Context, ids []int64) ([]int64, error)
	Create(ctx context.Context, l *Library) error
	// Update stores the name and replaces the book set atomically.
	Update(ctx context.Context, l *Library) error
	Delete(ctx context.Context, id int64) error
	AddBook(ctx context.Context, libraryID, bookID int64) error
	RemoveBook(ctx context.Context, libraryID, bookID int64) error

	ListLibrarians(ctx context.Context, limit, offset int) ([]Librarian, int, error)
	GetLibrarian(ctx context.Context, id int64) (Librarian, error)
	// LibrarianOf returns nil when the library has no librarian.
	LibrarianOf(ctx context.Context, libraryID int64) (*Librarian, error)
	CreateLibrarian(ctx context.Context, l *Librarian) error
	DeleteLibrarian(ctx context.Context, id int64) error
}
