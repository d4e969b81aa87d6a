package memstore

import (
	"context"

	"libraryapi/internal/apperr"
	"libraryapi/internal/book"
)

type BookRepo struct {
	s *Store
}

func (r *BookRepo) List(_ context.Context, q book.Query) ([]book.Book, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]book.Book, 0, len(r.s.books))
	for _, b := range r.s.books {
		all = append(all, b)
	}
	out, total := book.Apply(all, q)
	return out, total, nil
}

func (r *BookRepo) Get(_ context.Context, id int64) (book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (r *BookRepo) TitleTaken(_ context.Context, title string, excludeID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.titleTakenLocked(title, excludeID), nil
}

func (r *BookRepo) titleTakenLocked(title string, excludeID int64) bool {
	for _, b := range r.s.books {
		if b.Title == title && b.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *BookRepo) AuthorExists(_ context.Context, authorID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.authors[authorID]
	return ok, nil
}

// checkLocked enforces the same constraints as the books table.
func (r *BookRepo) checkLocked(b *book.Book) error {
	a, ok := r.s.authors[b.AuthorID]
	if !ok {
		return apperr.Integrity("constraint: books_author_id_fkey")
	}
	if r.titleTakenLocked(b.Title, b.ID) {
		return apperr.Integrity("constraint: books_title_key")
	}
	if _, err := book.ParseDate(b.PublishedDate); err != nil {
		return err
	}
	b.AuthorName = a.Name
	return nil
}

func (r *BookRepo) Create(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkLocked(b); err != nil {
		return err
	}
	r.s.nextBook++
	now := r.s.now()
	b.ID, b.CreatedAt, b.UpdatedAt = r.s.nextBook, now, now
	stored := *b
	stored.CreatedBy = copyStr(b.CreatedBy)
	stored.LastModifiedBy = copyStr(b.LastModifiedBy)
	r.s.books[b.ID] = stored
	return nil
}

func (r *BookRepo) Update(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.books[b.ID]
	if !ok {
		return book.ErrNotFound
	}
	if err := r.checkLocked(b); err != nil {
		return err
	}
	cur.Title = b.Title
	cur.PublicationYear = b.PublicationYear
	cur.AuthorID = b.AuthorID
	cur.AuthorName = b.AuthorName
	cur.ISBN = b.ISBN
	cur.Description = b.Description
	cur.PublishedDate = b.PublishedDate
	cur.LastModifiedBy = copyStr(b.LastModifiedBy)
	cur.UpdatedAt = r.s.now()
	r.s.books[b.ID] = cur
	b.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *BookRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.deleteBookLocked(id) {
		return book.ErrNotFound
	}
	return nil
}

func (r *BookRepo) DeleteMany(_ context.Context, ids []int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if r.s.deleteBookLocked(id) {
			n++
		}
	}
	return n, nil
}
