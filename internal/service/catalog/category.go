package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// ListCategories returns one page of categories with the filtered total.
func (s *Service) ListCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Category], error) {
	page.Normalize()

	var result *domain.Page[domain.Category]
	err := s.tx.RunInReadTx(ctx, func(ctx context.Context) error {
		categories, err := s.categories.List(ctx, page)
		if err != nil {
			return err
		}

		total, err := s.categories.Count(ctx)
		if err != nil {
			return err
		}

		result = domain.NewPage(categories, page, total)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return result, nil
}

// GetCategory returns a category by id.
func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// CreateCategory validates the input and stores a new category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c := &domain.Category{Name: strings.TrimSpace(input.Name)}
	id, err := s.categories.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	c.ID = id

	s.log.InfoContext(ctx, "category created", "category_id", id)
	return c, nil
}

// UpdateCategory validates the input and renames the category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c := &domain.Category{ID: id, Name: strings.TrimSpace(input.Name)}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}

	return c, nil
}

// DeleteCategory removes a category. A category still linked to products
// comes back as domain.ErrConflict, distinct from domain.ErrNotFound for a
// missing one.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}
