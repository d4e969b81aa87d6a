package memstore

import (
	"context"
	"sort"

	"libraryapi/internal/apperr"
	"libraryapi/internal/author"
)

type AuthorRepo struct {
	s *Store
}

func (r *AuthorRepo) List(_ context.Context, q author.Query) ([]author.Author, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]author.Author, 0, len(r.s.authors))
	for _, a := range r.s.authors {
		all = append(all, a)
	}
	out, total := author.Apply(all, q)
	return out, total, nil
}

func (r *AuthorRepo) Get(_ context.Context, id int64) (author.Author, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.authors[id]
	if !ok {
		return author.Author{}, author.ErrNotFound
	}
	return a, nil
}

func (r *AuthorRepo) Books(_ context.Context, authorID int64) ([]author.BookSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]author.BookSummary, 0)
	for _, b := range r.s.books {
		if b.AuthorID == authorID {
			out = append(out, author.BookSummary{ID: b.ID, Title: b.Title, PublicationYear: b.PublicationYear})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AuthorRepo) NameTaken(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.nameTakenLocked(name, excludeID), nil
}

func (r *AuthorRepo) nameTakenLocked(name string, excludeID int64) bool {
	for _, a := range r.s.authors {
		if a.Name == name && a.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *AuthorRepo) Create(_ context.Context, a *author.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTakenLocked(a.Name, 0) {
		return apperr.Integrity("constraint: authors_name_key")
	}
	r.s.nextAuthor++
	now := r.s.now()
	a.ID, a.CreatedAt, a.UpdatedAt = r.s.nextAuthor, now, now
	stored := *a
	stored.CreatedBy = copyStr(a.CreatedBy)
	stored.Books = nil
	r.s.authors[a.ID] = stored
	return nil
}

func (r *AuthorRepo) Update(_ context.Context, a *author.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.authors[a.ID]
	if !ok {
		return author.ErrNotFound
	}
	if r.nameTakenLocked(a.Name, a.ID) {
		return apperr.Integrity("constraint: authors_name_key")
	}
	cur.Name = a.Name
	cur.UpdatedAt = r.s.now()
	r.s.authors[a.ID] = cur
	a.UpdatedAt = cur.UpdatedAt
	// Books show the author's name.
	for id, b := range r.s.books {
		if b.AuthorID == a.ID {
			b.AuthorName = a.Name
			r.s.books[id] = b
		}
	}
	return nil
}

// Delete removes the author together with its books.
func (r *AuthorRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.authors[id]; !ok {
		return author.ErrNotFound
	}
	for bid, b := range r.s.books {
		if b.AuthorID == id {
			r.s.deleteBookLocked(bid)
		}
	}
	delete(r.s.authors, id)
	return nil
}
