package book

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/platform/postgres"
)

const dialect = "postgres"

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

var listColumns = []any{
	goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.publication_year"), goqu.I("b.author_id"), goqu.I("a.name"),
	goqu.I("b.isbn"), goqu.I("b.description"), goqu.I("b.published_date"),
	goqu.I("b.created_by"), goqu.I("b.last_modified_by"), goqu.I("b.created_at"), goqu.I("b.updated_at"),
}

func baseSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(goqu.T("books").As("b")).
		Join(goqu.T("authors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("b.author_id"))))
}

func whereClause(q Query) []exp.Expression {
	where := make([]exp.Expression, 0, 4)
	if q.AuthorID != nil {
		where = append(where, goqu.I("b.author_id").Eq(*q.AuthorID))
	}
	year := goqu.I("b.publication_year")
	for _, f := range q.Years {
		switch f.Op {
		case YearGt:
			where = append(where, year.Gt(f.Year))
		case YearLt:
			where = append(where, year.Lt(f.Year))
		case YearGte:
			where = append(where, year.Gte(f.Year))
		case YearLte:
			where = append(where, year.Lte(f.Year))
		default:
			where = append(where, year.Eq(f.Year))
		}
	}
	if q.CreatedBy != "" {
		where = append(where, goqu.L("b.created_by::text").Eq(q.CreatedBy))
	}
	if q.Search != "" {
		pattern := "%" + postgres.EscapeLike(q.Search) + "%"
		where = append(where, goqu.Or(
			goqu.I("b.title").ILike(pattern),
			goqu.I("a.name").ILike(pattern),
		))
	}
	return where
}

// orderClause sorts text keys byte-wise on their lower-case form so results
// match the in-memory store regardless of the database collation.
func orderClause(keys []OrderKey) []exp.OrderedExpression {
	if len(keys) == 0 {
		keys = DefaultOrdering
	}
	out := make([]exp.OrderedExpression, 0, len(keys)+1)
	for _, k := range keys {
		var col exp.Orderable
		switch k.Field {
		case OrderPublicationYear:
			col = goqu.I("b.publication_year")
		case OrderAuthorName:
			col = goqu.L(`LOWER(a.name) COLLATE "C"`)
		default:
			col = goqu.L(`LOWER(b.title) COLLATE "C"`)
		}
		if k.Desc {
			out = append(out, col.Desc())
		} else {
			out = append(out, col.Asc())
		}
	}
	return append(out, goqu.I("b.id").Asc())
}

// BuildListSQL renders the count and page queries for q.
func BuildListSQL(q Query) (countSQL string, countArgs []any, dataSQL string, dataArgs []any, err error) {
	where := whereClause(q)

	countSQL, countArgs, err = baseSelect().
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build count query: %w", err)
	}

	data := baseSelect().
		Select(listColumns...).
		Where(where...).
		Order(orderClause(q.Ordering)...)
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

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	var published *time.Time
	err := row.Scan(
		&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.AuthorName,
		&b.ISBN, &b.Description, &published,
		&b.CreatedBy, &b.LastModifiedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	b.PublishedDate = FormatDate(published)
	return b, err
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	countSQL, countArgs, dataSQL, dataArgs, err := BuildListSQL(q)
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

	out := make([]Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Book, error) {
	query, args, err := baseSelect().
		Select(listColumns...).
		Where(goqu.I("b.id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if postgres.IsNoRows(err) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM books WHERE title = $1 AND id <> $2)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var taken bool
	err := r.db.QueryRow(timeoutCtx, query, title, excludeID).Scan(&taken)
	return taken, err
}

func (r *PostgresRepo) AuthorExists(ctx context.Context, authorID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var exists bool
	err := r.db.QueryRow(timeoutCtx, query, authorID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (title, publication_year, author_id, isbn, description, published_date, created_by, last_modified_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at, updated_at
	`
	published, err := ParseDate(b.PublishedDate)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err = r.db.QueryRow(timeoutCtx, query,
		b.Title, b.PublicationYear, b.AuthorID, b.ISBN, b.Description, published, b.CreatedBy, b.LastModifiedBy,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const query = `
	UPDATE books
	SET title = $2, publication_year = $3, author_id = $4, isbn = $5, description = $6,
	    published_date = $7, last_modified_by = $8, updated_at = now()
	WHERE id = $1
	RETURNING updated_at
	`
	published, err := ParseDate(b.PublishedDate)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err = r.db.QueryRow(timeoutCtx, query,
		b.ID, b.Title, b.PublicationYear, b.AuthorID, b.ISBN, b.Description, published, b.LastModifiedBy,
	).Scan(&b.UpdatedAt)
	if postgres.IsNoRows(err) {
		return ErrNotFound
	}
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, postgres.TranslateError(err)
	}
	return int(tag.RowsAffected()), nil
}
