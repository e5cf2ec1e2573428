package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/reconcile"
)

// SearchProducts runs the paginated product search in two phases inside one
// read-only transaction: a cheap (id, name) projection over the filter join
// establishes the page window and its order, then the full aggregates are
// loaded by id and reconciled back into projection order. The detail query
// returns rows in arbitrary order and without LIMIT/OFFSET, so ordering is
// owned entirely by the projection.
func (s *Service) SearchProducts(ctx context.Context, input SearchInput) (*domain.Page[domain.Product], error) {
	page := input.Page
	page.Normalize()

	filter := domain.ProductFilter{
		Name:        strings.TrimSpace(input.Name),
		CategoryIDs: input.CategoryIDs,
	}

	var result *domain.Page[domain.Product]

	err := s.tx.RunInReadTx(ctx, func(ctx context.Context) error {
		summaries, err := s.products.SearchProjection(ctx, filter, page)
		if err != nil {
			return fmt.Errorf("projection phase: %w", err)
		}

		total, err := s.products.CountDistinct(ctx, filter)
		if err != nil {
			return fmt.Errorf("count phase: %w", err)
		}

		ids := make([]int64, len(summaries))
		for i, sm := range summaries {
			ids[i] = sm.ID
		}

		details, err := s.products.FindByIDsWithCategories(ctx, ids)
		if err != nil {
			return fmt.Errorf("detail phase: %w", err)
		}

		ordered, err := reconcile.ByID(ids, details, func(p domain.Product) int64 { return p.ID })
		if err != nil {
			return err
		}

		result = domain.NewPage(ordered, page, total)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	return result, nil
}
