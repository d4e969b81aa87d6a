package library

import (
	"time"

	"libraryapi/internal/apperr"
)

var (
	ErrNotFound          = apperr.New(apperr.ErrNotFound, "library not found")
	ErrLibrarianNotFound = apperr.New(apperr.ErrNotFound, "librarian not found")
	ErrBookNotFound      = apperr.New(apperr.ErrNotFound, "book not found")
	ErrBookNotInLibrary  = apperr.New(apperr.ErrNotFound, "book is not in this library")
)

// Library is a named collection of books. BookIDs holds the linked books in
// link order.
type Library struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BookIDs   []int64   `json:"book_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail is a library with its books and librarian resolved.
type Detail struct {
	Library
	Books     []BookRef  `json:"books"`
	Librarian *Librarian `json:"librarian"`
}

// BookRef is the read-only view of a book held by a library.
type BookRef struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// Librarian runs exactly one library.
type Librarian struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LibraryID int64     `json:"library"`
	CreatedAt time.Time `json:"created_at"`
}

// Input carries writable library fields. A nil BookIDs leaves the book set
// untouched.
type Input struct {
	Name    *string  `json:"name"`
	BookIDs *[]int64 `json:"book_ids"`
}

type LibrarianInput struct {
	Name      *string `json:"name"`
	LibraryID *int64  `json:"library"`
}

type libraryFields struct {
	Name    string  `json:"name" validate:"required,max=100"`
	BookIDs []int64 `json:"book_ids" validate:"dive,gt=0"`
}

type librarianFields struct {
	Name      string `json:"name" validate:"required,max=100"`
	LibraryID int64  `json:"library" validate:"required,gt=0"`
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
