package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/access"
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

const userColumns = `id, email, username, password_hash, role, date_of_birth, profile_photo, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var dob *time.Time
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &dob, &u.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if dob != nil {
		u.DateOfBirth = dob.Format("2006-01-02")
	}
	return u, nil
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (email, username, password_hash, role, date_of_birth)
	VALUES ($1, $2, $3, $4, NULLIF($5, '')::date)
	RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, u.Email, u.Username, u.PasswordHash, u.Role, u.DateOfBirth).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err == nil {
		return nil
	}

	// A concurrent registration can still win the race after the pre-checks.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_email_key", "users_email_lower_idx":
			return ErrEmailTaken
		case "users_username_key":
			return ErrUsernameTaken
		}
	}
	return postgres.TranslateError(err)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanUser(r.db.QueryRow(timeoutCtx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email))
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	// Ids that are not UUIDs cannot exist.
	return scanUser(r.db.QueryRow(timeoutCtx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id))
}

func (r *PostgresRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
}

func (r *PostgresRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *PostgresRepo) exists(ctx context.Context, query, arg string) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var ok bool
	err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&ok)
	return ok, err
}

func (r *PostgresRepo) SetRole(ctx context.Context, id string, role access.Role) error {
	return r.update(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id::text = $1`, id, string(role))
}

func (r *PostgresRepo) SetProfilePhoto(ctx context.Context, id, path string) error {
	return r.update(ctx, `UPDATE users SET profile_photo = $2, updated_at = now() WHERE id::text = $1`, id, path)
}

func (r *PostgresRepo) update(ctx context.Context, query, id, value string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, value)
	if err != nil {
		return postgres.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
