// Package product implements the Product repository using PostgreSQL.
// It owns the two-phase search plumbing: a paginated (id, name) projection
// over the product-category join, and an unpaginated detail fetch that loads
// full aggregates for a page of ids.
package product

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/rowgroup"
)

// Repo provides product persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new product repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL for fixed JOIN queries
// ---------------------------------------------------------------------------

const findByIDsSQL = `
SELECT p.id, p.name, p.description, p.price, p.img_url, p.date,
       c.id, c.name
FROM products p
LEFT JOIN product_categories pc ON pc.product_id = p.id
LEFT JOIN categories c ON c.id = pc.category_id
WHERE p.id = ANY($1::bigint[])`

const insertProductSQL = `
INSERT INTO products (name, description, price, img_url, date)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

const updateProductSQL = `
UPDATE products
SET name = $2, description = $3, price = $4, img_url = $5, date = $6
WHERE id = $1`

const deleteProductSQL = `DELETE FROM products WHERE id = $1`

const existsProductSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

const deleteLinksSQL = `DELETE FROM product_categories WHERE product_id = $1`

const insertLinksSQL = `
INSERT INTO product_categories (product_id, category_id)
SELECT $1, unnest($2::bigint[])`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a product aggregate with its category set.
// Returns domain.ErrNotFound if the product does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := r.FindByIDsWithCategories(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}

	p := products[0]
	return &p, nil
}

// FindByIDsWithCategories loads full product aggregates for the given ids in
// one query, flattening the one-row-per-category result into one aggregate
// per product. Rows come back in arbitrary order; callers that need a
// specific order reconcile against their own id sequence. Ids with no stored
// product are simply absent from the result.
func (r *Repo) FindByIDsWithCategories(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}
	defer rows.Close()

	flat, err := scanProductRows(rows)
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}

	return flattenProducts(flat), nil
}

// ExistsByID reports whether a product with the given id is stored.
func (r *Repo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, existsProductSQL, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}

	return exists, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new product and its category links, returning the
// assigned id. Category references are not checked up front; a link naming
// an unknown category fails here with domain.ErrDanglingReference.
func (r *Repo) Create(ctx context.Context, p *domain.Product, categories []domain.CategoryRef) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var id int64
	err := querier.QueryRow(ctx, insertProductSQL,
		p.Name, p.Description, p.Price, ptrTextArg(p.ImgURL), p.Date,
	).Scan(&id)
	if err != nil {
		return 0, postgres.MapError(err, "product", 0)
	}

	if err := r.replaceCategories(ctx, querier, id, categories); err != nil {
		return 0, err
	}

	return id, nil
}

// Update rewrites the product row and replaces its whole category set.
// Returns domain.ErrNotFound if the product does not exist, and
// domain.ErrDanglingReference if a category reference has no stored row.
func (r *Repo) Update(ctx context.Context, p *domain.Product, categories []domain.CategoryRef) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, ptrTextArg(p.ImgURL), p.Date,
	)
	if err != nil {
		return postgres.MapError(err, "product", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", p.ID, domain.ErrNotFound)
	}

	return r.replaceCategories(ctx, querier, p.ID, categories)
}

// Delete removes a product. Its own link rows cascade; a foreign-key
// rejection from elsewhere surfaces as domain.ErrConflict.
// Returns domain.ErrNotFound if the product does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return postgres.MapError(err, "product", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// replaceCategories clears the product's link rows and rebuilds them from
// the reference set. Full replace only; partial add/remove is not offered
// at this layer.
func (r *Repo) replaceCategories(ctx context.Context, querier postgres.Querier, productID int64, categories []domain.CategoryRef) error {
	if _, err := querier.Exec(ctx, deleteLinksSQL, productID); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}

	if len(categories) == 0 {
		return nil
	}

	ids := make([]int64, len(categories))
	for i, ref := range categories {
		ids[i] = ref.ID
	}

	if _, err := querier.Exec(ctx, insertLinksSQL, productID, ids); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("product %d categories: %w", productID, domain.ErrDanglingReference)
		}
		return fmt.Errorf("link product categories: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning and flattening
// ---------------------------------------------------------------------------

// productRow is one denormalized (product, category) row from a join query.
// Category columns are NULL for products with no categories.
type productRow struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	ImgURL      pgtype.Text
	Date        time.Time
	CategoryID  pgtype.Int8
	Category    pgtype.Text
}

func scanProductRows(rows pgx.Rows) ([]productRow, error) {
	var result []productRow
	for rows.Next() {
		var row productRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Description, &row.Price, &row.ImgURL, &row.Date,
			&row.CategoryID, &row.Category,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// flattenProducts collapses repeated product rows into one aggregate per
// product id, appending a category child for every non-NULL category column.
func flattenProducts(rows []productRow) []domain.Product {
	products := rowgroup.Flatten(rows,
		func(r productRow) int64 { return r.ID },
		func(r productRow) domain.Product {
			return domain.Product{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				Price:       r.Price,
				ImgURL:      pgTextToPtr(r.ImgURL),
				Date:        r.Date,
			}
		},
		func(p *domain.Product, r productRow) {
			if !r.CategoryID.Valid {
				return
			}
			p.Categories = append(p.Categories, domain.Category{
				ID:   r.CategoryID.Int64,
				Name: r.Category.String,
			})
		},
	)

	if products == nil {
		products = []domain.Product{}
	}

	return products
}

// ---------------------------------------------------------------------------
// pgtype helpers
// ---------------------------------------------------------------------------

// pgTextToPtr returns a *string (nil when NULL).
func pgTextToPtr(t pgtype.Text) *string {
	if t.Valid {
		return &t.String
	}
	return nil
}

// ptrTextArg converts a *string to pgtype.Text (nil -> NULL).
func ptrTextArg(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
