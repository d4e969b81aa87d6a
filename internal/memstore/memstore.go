// Package memstore keeps the whole catalog in process memory. It backs
// STORE_DRIVER=memory and the service tests, and enforces the same
// uniqueness rules and cascades as the Postgres schema.
package memstore

import (
	"sync"
	"time"

	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/library"
	"libraryapi/internal/user"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	authors    map[int64]author.Author
	books      map[int64]book.Book
	libraries  map[int64]library.Library
	librarians map[int64]library.Librarian
	users      map[string]user.User
	revoked    map[string]time.Time

	nextAuthor    int64
	nextBook      int64
	nextLibrary   int64
	nextLibrarian int64
}

var (
	_ author.Repository  = (*AuthorRepo)(nil)
	_ book.Repository    = (*BookRepo)(nil)
	_ library.Repository = (*LibraryRepo)(nil)
	_ user.Repository    = (*UserRepo)(nil)
)

func New() *Store {
	return &Store{
		now:        time.Now,
		authors:    make(map[int64]author.Author),
		books:      make(map[int64]book.Book),
		libraries:  make(map[int64]library.Library),
		librarians: make(map[int64]library.Librarian),
		users:      make(map[string]user.User),
		revoked:    make(map[string]time.Time),
	}
}

func (s *Store) Authors() *AuthorRepo { return &AuthorRepo{s: s} }
func (s *Store) Books() *BookRepo { return &BookRepo{s: s} }
func (s *Store) Libraries() *LibraryRepo { return &LibraryRepo{s: s} }
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }
func (s *Store) Blacklist() *BlacklistRepo { return &BlacklistRepo{s: s} }

// deleteBookLocked removes a book and its library links.
func (s *Store) deleteBookLocked(id int64) bool {
	if _, ok := s.books[id]; !ok {
		return false
	}
	delete(s.books, id)
	for lid, l := range s.libraries {
		if kept, changed := without(l.BookIDs, id); changed {
			l.BookIDs = kept
			s.libraries[lid] = l
		}
	}
	return true
}

func without(ids []int64, id int64) ([]int64, bool) {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out, len(out) != len(ids)
}

func copyIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
