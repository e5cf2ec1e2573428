// Package recovery implements the password-recovery token repository using
// PostgreSQL.
package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// Repo provides recovery-token persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new recovery repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO password_recoveries (email, token, expiration)
VALUES ($1, $2, $3)
RETURNING id`

const findValidSQL = `
SELECT id, email, token, expiration, used_at
FROM password_recoveries
WHERE token = $1 AND expiration > $2 AND used_at IS NULL`

const markUsedSQL = `
UPDATE password_recoveries
SET used_at = $2
WHERE id = $1 AND used_at IS NULL`

const deleteStaleSQL = `
DELETE FROM password_recoveries
WHERE expiration < $1 OR used_at IS NOT NULL`

// Create stores a fresh recovery token and returns its id.
func (r *Repo) Create(ctx context.Context, rec *domain.PasswordRecovery) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var id int64
	err := querier.QueryRow(ctx, insertSQL, rec.Email, rec.Token, rec.Expiration).Scan(&id)
	if err != nil {
		return 0, postgres.MapError(err, "password recovery", 0)
	}

	return id, nil
}

// FindValid returns the recovery matching the token, provided it has not
// expired at the given instant and has not been used.
// Returns domain.ErrNotFound otherwise.
func (r *Repo) FindValid(ctx context.Context, token string, now time.Time) (*domain.PasswordRecovery, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var rec domain.PasswordRecovery
	err := querier.QueryRow(ctx, findValidSQL, token, now).
		Scan(&rec.ID, &rec.Email, &rec.Token, &rec.Expiration, &rec.UsedAt)
	if err != nil {
		return nil, postgres.MapError(err, "password recovery", 0)
	}

	return &rec, nil
}

// MarkUsed consumes a token so it cannot authorize a second reset. The
// guard on used_at makes consumption first-wins under concurrent resets.
// Returns domain.ErrNotFound if the token was already consumed or is gone.
func (r *Repo) MarkUsed(ctx context.Context, id int64, usedAt time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markUsedSQL, id, usedAt)
	if err != nil {
		return fmt.Errorf("mark recovery used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("password recovery %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteStale removes expired and consumed tokens, returning how many rows
// went away. Run periodically from the cleanup command.
func (r *Repo) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteStaleSQL, now)
	if err != nil {
		return 0, fmt.Errorf("delete stale recoveries: %w", err)
	}

	return tag.RowsAffected(), nil
}
