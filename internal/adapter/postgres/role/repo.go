// Package role implements the Role repository using PostgreSQL.
// Roles are a small seeded set; the repository only reads them.
package role

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// Repo provides role lookups backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new role repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const listSQL = `SELECT id, authority FROM roles ORDER BY id ASC`

const getByAuthoritySQL = `SELECT id, authority FROM roles WHERE authority = $1`

// List returns all stored roles.
func (r *Repo) List(ctx context.Context) ([]domain.Role, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Role])
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	if roles == nil {
		roles = []domain.Role{}
	}

	return roles, nil
}

// GetByAuthority returns the role with the given authority name.
// Returns domain.ErrNotFound if no such role is stored.
func (r *Repo) GetByAuthority(ctx context.Context, authority string) (*domain.Role, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var role domain.Role
	if err := querier.QueryRow(ctx, getByAuthoritySQL, authority).Scan(&role.ID, &role.Authority); err != nil {
		return nil, postgres.MapError(err, "role", 0)
	}

	return &role, nil
}
