package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBlacklist keeps revoked token ids in the token_blacklist table.
// It is used when no Redis is configured.
type PostgresBlacklist struct {
	db *pgxpool.Pool
}

func NewPostgresBlacklist(db *pgxpool.Pool) *PostgresBlacklist {
	return &PostgresBlacklist{db: db}
}

func (b *PostgresBlacklist) AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	const query = `
	INSERT INTO token_blacklist (jti, user_id, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (jti) DO NOTHING
	`
	_, err := b.db.Exec(ctx, query, jti, userID, expiresAt)
	return err
}

func (b *PostgresBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE jti = $1 AND expires_at > now())`
	var exists bool
	err := b.db.QueryRow(ctx, query, jti).Scan(&exists)
	return exists, err
}

// CleanupExpired drops rows whose tokens can no longer be presented.
func (b *PostgresBlacklist) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := b.db.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
func (b *PostgresBlacklist) RunCleanup(ctx context.Context, interval time.Duration, onErr func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.CleanupExpired(ctx); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}
}
