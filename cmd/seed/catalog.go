package main

import (
	"context"
	"fmt"

	"libraryapi/internal/access"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/library"
)

type sampleBook struct {
	title string
	year  int
	isbn  string
}

type sampleAuthor struct {
	name  string
	books []sampleBook
}

var sampleAuthors = []sampleAuthor{
	{name: "J.K. Rowling", books: []sampleBook{
		{"Harry Potter and the Philosopher's Stone", 1997, "9780747532699"},
		{"Harry Potter and the Chamber of Secrets", 1998, "9780747538493"},
		{"Harry Potter and the Prisoner of Azkaban", 1999, "9780747542155"},
	}},
	{name: "George R.R. Martin", books: []sampleBook{
		{"A Game of Thrones", 1996, "9780553103540"},
		{"A Clash of Kings", 1998, "9780553108033"},
	}},
	{name: "Chinua Achebe", books: []sampleBook{
		{"Things Fall Apart", 1958, ""},
	}},
	{name: "Ursula K. Le Guin", books: []sampleBook{
		{"A Wizard of Earthsea", 1968, ""},
		{"The Left Hand of Darkness", 1969, ""},
	}},
}

type services struct {
	authors   *author.Service
	books     *book.Service
	libraries *library.Service
}

type seedResult struct {
	authors, books int
	skipped        bool
}

// seedCatalog loads the sample authors, books, a library holding all of
// them and its librarian. It does nothing when the catalog has books.
func seedCatalog(ctx context.Context, svc services, actor *access.Actor) (seedResult, error) {
	_, total, err := svc.books.List(ctx, actor, book.Query{Limit: 1})
	if err != nil {
		return seedResult{}, fmt.Errorf("count books: %w", err)
	}
	if total > 0 {
		return seedResult{skipped: true}, nil
	}

	var res seedResult
	var bookIDs []int64
	for _, sa := range sampleAuthors {
		name := sa.name
		a, err := svc.authors.Create(ctx, actor, author.Input{Name: &name})
		if err != nil {
			return res, fmt.Errorf("create author %q: %w", sa.name, err)
		}
		res.authors++
		for _, sb := range sa.books {
			title, year, isbn := sb.title, sb.year, sb.isbn
			b, err := svc.books.Create(ctx, actor, book.Input{
				Title: &title, PublicationYear: &year, AuthorID: &a.ID, ISBN: &isbn,
			})
			if err != nil {
				return res, fmt.Errorf("create book %q: %w", sb.title, err)
			}
			res.books++
			bookIDs = append(bookIDs, b.ID)
		}
	}

	libName := "Central Library"
	lib, err := svc.libraries.Create(ctx, actor, library.Input{Name: &libName, BookIDs: &bookIDs})
	if err != nil {
		return res, fmt.Errorf("create library: %w", err)
	}
	librarian := "Irma Pince"
	if _, err := svc.libraries.CreateLibrarian(ctx, actor, library.LibrarianInput{Name: &librarian, LibraryID: &lib.ID}); err != nil {
		return res, fmt.Errorf("create librarian: %w", err)
	}
	return res, nil
}
