// Package category implements the Category repository using PostgreSQL.
package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// Repo provides category persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new category repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const listSQL = `
SELECT id, name
FROM categories
ORDER BY name ASC, id ASC
LIMIT $1 OFFSET $2`

const countSQL = `SELECT COUNT(*) FROM categories`

const getByIDSQL = `SELECT id, name FROM categories WHERE id = $1`

const insertSQL = `INSERT INTO categories (name) VALUES ($1) RETURNING id`

const updateSQL = `UPDATE categories SET name = $2 WHERE id = $1`

const deleteSQL = `DELETE FROM categories WHERE id = $1`

// List returns a page of categories ordered by name.
func (r *Repo) List(ctx context.Context, page domain.PageRequest) ([]domain.Category, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Category])
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

// Count returns the total number of stored categories.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int64
	if err := querier.QueryRow(ctx, countSQL).Scan(&total); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}

	return total, nil
}

// GetByID returns a category by id.
// Returns domain.ErrNotFound if the category does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.Category
	if err := querier.QueryRow(ctx, getByIDSQL, id).Scan(&c.ID, &c.Name); err != nil {
		return nil, postgres.MapError(err, "category", id)
	}

	return &c, nil
}

// Create inserts a new category and returns the assigned id.
func (r *Repo) Create(ctx context.Context, c *domain.Category) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var id int64
	if err := querier.QueryRow(ctx, insertSQL, c.Name).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "category", 0)
	}

	return id, nil
}

// Update renames a category.
// Returns domain.ErrNotFound if the category does not exist.
func (r *Repo) Update(ctx context.Context, c *domain.Category) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateSQL, c.ID, c.Name)
	if err != nil {
		return postgres.MapError(err, "category", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", c.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a category. A category still referenced by products is
// rejected by the restrictive foreign key and surfaces as domain.ErrConflict.
// Returns domain.ErrNotFound if the category does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "category", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
