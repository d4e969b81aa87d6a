package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/platform/postgres"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const librarySelect = `
	SELECT l.id, l.name,
	       COALESCE(array_agg(lb.book_id ORDER BY lb.id) FILTER (WHERE lb.book_id IS NOT NULL), '{}'),
	       l.created_at, l.updated_at
	FROM libraries l
	LEFT JOIN library_books lb ON lb.library_id = l.id
	`

func scanLibrary(row pgx.Row) (Library, error) {
	var l Library
	err := row.Scan(&l.ID, &l.Name, &l.BookIDs, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *PostgresRepo) List(ctx context.Context, limit, offset int) ([]Library, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM libraries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := librarySelect + `GROUP BY l.id ORDER BY l.id LIMIT NULLIF($1::int, 0) OFFSET $2`
	rows, err := r.db.Query(timeoutCtx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Library, 0)
	for rows.Next() {
		l, err := scanLibrary(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Library, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	l, err := scanLibrary(r.db.QueryRow(timeoutCtx, librarySelect+`WHERE l.id = $1 GROUP BY l.id`, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return Library{}, ErrNotFound
		}
		return Library{}, err
	}
	return l, nil
}

func (r *PostgresRepo) Books(ctx context.Context, libraryID int64) ([]BookRef, error) {
	const query = `
	SELECT b.id, b.title, a.name
	FROM library_books lb
	JOIN books b ON b.id = lb.book_id
	JOIN authors a ON a.id = b.author_id
	WHERE lb.library_id = $1
	ORDER BY lb.id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookRef, 0)
	for rows.Next() {
		var b BookRef
		if err := rows.Scan(&b.ID, &b.Title, &b.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) MissingBooks(ctx context.Context, ids []int64) ([]int64, error) {
	const query = `
	SELECT t.id
	FROM unnest($1::bigint[]) WITH ORDINALITY AS t(id, ord)
	WHERE NOT EXISTS (SELECT 1 FROM books b WHERE b.id = t.id)
	ORDER BY t.ord
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *PostgresRepo) Create(ctx context.Context, l *Library) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	return pgx.BeginFunc(timeoutCtx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(timeoutCtx,
			`INSERT INTO libraries (name) VALUES ($1) RETURNING id, created_at, updated_at`, l.Name,
		).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return postgres.TranslateError(err)
		}
		return insertLinks(timeoutCtx, tx, l.ID, l.BookIDs)
	})
}

func (r *PostgresRepo) Update(ctx context.Context, l *Library) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	return pgx.BeginFunc(timeoutCtx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(timeoutCtx,
			`UPDATE libraries SET name = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`, l.ID, l.Name,
		).Scan(&l.UpdatedAt)
		if err != nil {
			if postgres.IsNoRows(err) {
				return ErrNotFound
			}
			return postgres.TranslateError(err)
		}
		if _, err := tx.Exec(timeoutCtx, `DELETE FROM library_books WHERE library_id = $1`, l.ID); err != nil {
			return err
		}
		return insertLinks(timeoutCtx, tx, l.ID, l.BookIDs)
	})
}

func insertLinks(ctx context.Context, tx pgx.Tx, libraryID int64, bookIDs []int64) error {
	if len(bookIDs) == 0 {
		return nil
	}
	const query = `
	INSERT INTO library_books (library_id, book_id)
	SELECT $1, t.id FROM unnest($2::bigint[]) WITH ORDINALITY AS t(id, ord) ORDER BY t.ord
	ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, libraryID, bookIDs); err != nil {
		return fmt.Errorf("link books: %w", postgres.TranslateError(err))
	}
	return nil
}

// Delete relies on ON DELETE CASCADE from library_books and librarians.
func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM libraries WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) AddBook(ctx context.Context, libraryID, bookID int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx,
		`INSERT INTO library_books (library_id, book_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, libraryID, bookID)
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) RemoveBook(ctx context.Context, libraryID, bookID int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx,
		`DELETE FROM library_books WHERE library_id = $1 AND book_id = $2`, libraryID, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotInLibrary
	}
	return nil
}

func (r *PostgresRepo) ListLibrarians(ctx context.Context, limit, offset int) ([]Librarian, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM librarians`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(timeoutCtx,
		`SELECT id, name, library_id, created_at FROM librarians ORDER BY id LIMIT NULLIF($1::int, 0) OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Librarian, 0)
	for rows.Next() {
		var l Librarian
		if err := rows.Scan(&l.ID, &l.Name, &l.LibraryID, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetLibrarian(ctx context.Context, id int64) (Librarian, error) {
	return r.oneLibrarian(ctx, `SELECT id, name, library_id, created_at FROM librarians WHERE id = $1`, id)
}

func (r *PostgresRepo) LibrarianOf(ctx context.Context, libraryID int64) (*Librarian, error) {
	l, err := r.oneLibrarian(ctx, `SELECT id, name, library_id, created_at FROM librarians WHERE library_id = $1`, libraryID)
	if errors.Is(err, ErrLibrarianNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PostgresRepo) oneLibrarian(ctx context.Context, query string, arg int64) (Librarian, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var l Librarian
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&l.ID, &l.Name, &l.LibraryID, &l.CreatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return Librarian{}, ErrLibrarianNotFound
		}
		return Librarian{}, err
	}
	return l, nil
}

func (r *PostgresRepo) CreateLibrarian(ctx context.Context, l *Librarian) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx,
		`INSERT INTO librarians (name, library_id) VALUES ($1, $2) RETURNING id, created_at`, l.Name, l.LibraryID,
	).Scan(&l.ID, &l.CreatedAt)
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) DeleteLibrarian(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM librarians WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLibrarianNotFound
	}
	return nil
}
