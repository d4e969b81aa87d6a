package book

import (
	"fmt"
	"time"

	"libraryapi/internal/apperr"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = apperr.New(apperr.ErrNotFound, "book not found")

// DateLayout is the wire and storage format of published_date.
const DateLayout = "2006-01-02"

// Book represents a book entity. AuthorName is read-only and derived from
// the author row.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        int64     `json:"author"`
	AuthorName      string    `json:"author_name"`
	ISBN            string    `json:"isbn,omitempty"`
	Description     string    `json:"description,omitempty"`
	PublishedDate   string    `json:"published_date,omitempty"`
	CreatedBy       *string   `json:"created_by,omitempty"`
	LastModifiedBy  *string   `json:"last_modified_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input carries writable fields. Nil means "not sent": a create or a full
// update treats nil as empty, a partial update keeps the stored value.
type Input struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	AuthorID        *int64  `json:"author"`
	ISBN            *string `json:"isbn"`
	Description     *string `json:"description"`
	PublishedDate   *string `json:"published_date"`
}

// fields is the merged view that gets validated.
type fields struct {
	Title           string `json:"title" validate:"required,max=200"`
	PublicationYear int    `json:"publication_year" validate:"required,gte=1,notfuture"`
	AuthorID        int64  `json:"author" validate:"required,gt=0"`
	ISBN            string `json:"isbn" validate:"omitempty,isbn13"`
	Description     string `json:"description" validate:"max=5000"`
	PublishedDate   string `json:"published_date" validate:"omitempty,datetime=2006-01-02"`
}

func (in Input) merge(base fields) fields {
	if in.Title != nil {
		base.Title = *in.Title
	}
	if in.PublicationYear != nil {
		base.PublicationYear = *in.PublicationYear
	}
	if in.AuthorID != nil {
		base.AuthorID = *in.AuthorID
	}
	if in.ISBN != nil {
		base.ISBN = *in.ISBN
	}
	if in.Description != nil {
		base.Description = *in.Description
	}
	if in.PublishedDate != nil {
		base.PublishedDate = *in.PublishedDate
	}
	return base
}

func fieldsOf(b Book) fields {
	return fields{
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		AuthorID:        b.AuthorID,
		ISBN:            b.ISBN,
		Description:     b.Description,
		PublishedDate:   b.PublishedDate,
	}
}

func (f fields) apply(b *Book) {
	b.Title = f.Title
	b.PublicationYear = f.PublicationYear
	b.AuthorID = f.AuthorID
	b.ISBN = f.ISBN
	b.Description = f.Description
	b.PublishedDate = f.PublishedDate
}

// DefaultPublishedDate returns Jan 1 of year.
func DefaultPublishedDate(year int) string {
	return fmt.Sprintf("%04d-01-01", year)
}

// ParseDate parses a stored published_date.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
