package catalog

import (
	"context"
	"fmt"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// GetProduct returns a product aggregate by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// CreateProduct validates the input and stores a new product with its
// category set. The whole write runs in one transaction so a dangling
// category reference rolls back the product row too.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := input.Validate(s.now()); err != nil {
		return nil, err
	}

	refs := domain.CategoryRefs(input.CategoryIDs)

	var created *domain.Product
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.products.Create(ctx, input.product(0), refs)
		if err != nil {
			return err
		}

		created, err = s.products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.InfoContext(ctx, "product created", "product_id", created.ID)
	return created, nil
}

// UpdateProduct validates the input and rewrites the product, replacing its
// whole category set with the input's.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	if err := input.Validate(s.now()); err != nil {
		return nil, err
	}

	refs := domain.CategoryRefs(input.CategoryIDs)

	var updated *domain.Product
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.products.Update(ctx, input.product(id), refs); err != nil {
			return err
		}

		var err error
		updated, err = s.products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	return updated, nil
}

// DeleteProduct removes a product and its category links.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}
