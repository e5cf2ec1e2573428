// Package catalog implements the product and category business logic,
// including the two-phase paginated product search.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type productRepo interface {
	SearchProjection(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.ProductSummary, error)
	CountDistinct(ctx context.Context, filter domain.ProductFilter) (int64, error)
	FindByIDsWithCategories(ctx context.Context, ids []int64) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product, categories []domain.CategoryRef) (int64, error)
	Update(ctx context.Context, p *domain.Product, categories []domain.CategoryRef) error
	Delete(ctx context.Context, id int64) error
}

type categoryRepo interface {
	List(ctx context.Context, page domain.PageRequest) ([]domain.Category, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) (int64, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the catalog business logic.
type Service struct {
	log        *slog.Logger
	products   productRepo
	categories categoryRepo
	tx         txManager

	now func() time.Time
}

// NewService creates a new Catalog service.
func NewService(logger *slog.Logger, products productRepo, categories categoryRepo, tx txManager) *Service {
	return &Service{
		log:        logger.With("service", "catalog"),
		products:   products,
		categories: categories,
		tx:         tx,
		now:        time.Now,
	}
}
