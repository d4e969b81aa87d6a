package memstore

import (
	"context"
	"sort"

	"libraryapi/internal/apperr"
	"libraryapi/internal/library"
)

type LibraryRepo struct {
	s *Store
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (r *LibraryRepo) List(_ context.Context, limit, offset int) ([]library.Library, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]library.Library, 0, len(r.s.libraries))
	for _, l := range r.s.libraries {
		l.BookIDs = copyIDs(l.BookIDs)
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), len(all), nil
}

func (r *LibraryRepo) Get(_ context.Context, id int64) (library.Library, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.libraries[id]
	if !ok {
		return library.Library{}, library.ErrNotFound
	}
	l.BookIDs = copyIDs(l.BookIDs)
	return l, nil
}

func (r *LibraryRepo) Books(_ context.Context, libraryID int64) ([]library.BookRef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.libraries[libraryID]
	if !ok {
		return []library.BookRef{}, nil
	}
	out := make([]library.BookRef, 0, len(l.BookIDs))
	for _, id := range l.BookIDs {
		b := r.s.books[id]
		out = append(out, library.BookRef{ID: b.ID, Title: b.Title, AuthorName: b.AuthorName})
	}
	return out, nil
}

func (r *LibraryRepo) MissingBooks(_ context.Context, ids []int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.missingLocked(ids), nil
}

func (r *LibraryRepo) missingLocked(ids []int64) []int64 {
	var missing []int64
	for _, id := range ids {
		if _, ok := r.s.books[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func linkSet(ids []int64) []int64 {
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

func (r *LibraryRepo) Create(_ context.Context, l *library.Library) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.missingLocked(l.BookIDs)) > 0 {
		return apperr.Integrity("constraint: library_books_book_id_fkey")
	}
	r.s.nextLibrary++
	now := r.s.now()
	l.ID, l.CreatedAt, l.UpdatedAt = r.s.nextLibrary, now, now
	l.BookIDs = linkSet(l.BookIDs)
	stored := *l
	stored.BookIDs = copyIDs(l.BookIDs)
	r.s.libraries[l.ID] = stored
	return nil
}

func (r *LibraryRepo) Update(_ context.Context, l *library.Library) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.libraries[l.ID]
	if !ok {
		return library.ErrNotFound
	}
	if len(r.missingLocked(l.BookIDs)) > 0 {
		return apperr.Integrity("constraint: library_books_book_id_fkey")
	}
	cur.Name = l.Name
	cur.BookIDs = linkSet(l.BookIDs)
	cur.UpdatedAt = r.s.now()
	r.s.libraries[l.ID] = cur
	l.BookIDs = copyIDs(cur.BookIDs)
	l.UpdatedAt = cur.UpdatedAt
	return nil
}

// Delete removes the library, its links and its librarian. Books stay.
func (r *LibraryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.libraries[id]; !ok {
		return library.ErrNotFound
	}
	delete(r.s.libraries, id)
	for lid, lib := range r.s.librarians {
		if lib.LibraryID == id {
			delete(r.s.librarians, lid)
		}
	}
	return nil
}

func (r *LibraryRepo) AddBook(_ context.Context, libraryID, bookID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.libraries[libraryID]
	if !ok {
		return library.ErrNotFound
	}
	if _, ok := r.s.books[bookID]; !ok {
		return library.ErrBookNotFound
	}
	for _, id := range l.BookIDs {
		if id == bookID {
			return nil
		}
	}
	l.BookIDs = append(copyIDs(l.BookIDs), bookID)
	r.s.libraries[libraryID] = l
	return nil
}

func (r *LibraryRepo) RemoveBook(_ context.Context, libraryID, bookID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.libraries[libraryID]
	if !ok {
		return library.ErrNotFound
	}
	kept, changed := without(l.BookIDs, bookID)
	if !changed {
		return library.ErrBookNotInLibrary
	}
	l.BookIDs = kept
	r.s.libraries[libraryID] = l
	return nil
}

func (r *LibraryRepo) ListLibrarians(_ context.Context, limit, offset int) ([]library.Librarian, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]library.Librarian, 0, len(r.s.librarians))
	for _, l := range r.s.librarians {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), len(all), nil
}

func (r *LibraryRepo) GetLibrarian(_ context.Context, id int64) (library.Librarian, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.librarians[id]
	if !ok {
		return library.Librarian{}, library.ErrLibrarianNotFound
	}
	return l, nil
}

func (r *LibraryRepo) LibrarianOf(_ context.Context, libraryID int64) (*library.Librarian, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.librarians {
		if l.LibraryID == libraryID {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (r *LibraryRepo) CreateLibrarian(_ context.Context, l *library.Librarian) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.libraries[l.LibraryID]; !ok {
		return apperr.Integrity("constraint: librarians_library_id_fkey")
	}
	for _, existing := range r.s.librarians {
		if existing.LibraryID == l.LibraryID {
			return apperr.Integrity("constraint: librarians_library_id_key")
		}
	}
	r.s.nextLibrarian++
	l.ID, l.CreatedAt = r.s.nextLibrarian, r.s.now()
	r.s.librarians[l.ID] = *l
	return nil
}

func (r *LibraryRepo) DeleteLibrarian(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.librarians[id]; !ok {
		return library.ErrLibrarianNotFound
	}
	delete(r.s.librarians, id)
	return nil
}
