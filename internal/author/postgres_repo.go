package author

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
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

func buildListSQL(q Query) (countSQL string, countArgs []any, dataSQL string, dataArgs []any, err error) {
	var where []exp.Expression
	if q.CreatedBy != "" {
		where = append(where, goqu.L("created_by::text").Eq(q.CreatedBy))
	}
	if q.Search != "" {
		where = append(where, goqu.C("name").ILike("%"+postgres.EscapeLike(q.Search)+"%"))
	}

	base := goqu.Dialect("postgres").From("authors").Where(where...)
	countSQL, countArgs, err = base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build count query: %w", err)
	}

	name := goqu.L(`LOWER(name) COLLATE "C"`)
	order := name.Asc()
	if q.Desc {
		order = name.Desc()
	}
	data := base.
		Select("id", "name", "created_by", "created_at", "updated_at").
		Order(order, goqu.C("id").Asc())
	if q.Limit > 0 {
		data = data.Limit(uint(q.Limit))
	}
	if q.Offset > 0 {
		data = data.Offset(uint(q.Offset))
	}
	dataSQL, dataArgs, err = data.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build list query: %w", err)
	}
	return countSQL, countArgs, dataSQL, dataArgs, nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Author, int, error) {
	countSQL, countArgs, dataSQL, dataArgs, err := buildListSQL(q)
	if err != nil {
		return nil, 0, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(timeoutCtx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Author, 0)
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Author, error) {
	const query = `SELECT id, name, created_by, created_at, updated_at FROM authors WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a Author
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(&a.ID, &a.Name, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}
	return a, nil
}

func (r *PostgresRepo) Books(ctx context.Context, authorID int64) ([]BookSummary, error) {
	const query = `SELECT id, title, publication_year FROM books WHERE author_id = $1 ORDER BY id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookSummary, 0)
	for rows.Next() {
		var b BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.PublicationYear); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM authors WHERE name = $1 AND id <> $2)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var taken bool
	err := r.db.QueryRow(timeoutCtx, query, name, excludeID).Scan(&taken)
	return taken, err
}

func (r *PostgresRepo) Create(ctx context.Context, a *Author) error {
	const query = `
	INSERT INTO authors (name, created_by)
	VALUES ($1, $2)
	RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, a.Name, a.CreatedBy).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) Update(ctx context.Context, a *Author) error {
	const query = `UPDATE authors SET name = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, a.ID, a.Name).Scan(&a.UpdatedAt)
	if postgres.IsNoRows(err) {
		return ErrNotFound
	}
	return postgres.TranslateError(err)
}

// Delete relies on ON DELETE CASCADE from books and library_books.
func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
