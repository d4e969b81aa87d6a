package author

import (
	"time"

	"libraryapi/internal/apperr"
)

// ErrNotFound is returned when an author is not found.
var ErrNotFound = apperr.New(apperr.ErrNotFound, "author not found")

// Author represents an author entity. Books is only filled on retrieval of
// a single author.
type Author struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	CreatedBy *string       `json:"created_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Books     []BookSummary `json:"books,omitempty"`
}

// BookSummary is the nested, read-only view of a book written by an author.
type BookSummary struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
}

// Input carries writable fields. A nil Name keeps the stored value on a
// partial update.
type Input struct {
	Name *string `json:"name"`
}

type fields struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (in Input) merge(base fields) fields {
	if in.Name != nil {
		base.Name = *in.Name
	}
	return base
}
