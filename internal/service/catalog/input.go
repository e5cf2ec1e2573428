package catalog

import (
	"strings"
	"time"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// SearchInput holds the parameters for a paginated product search.
type SearchInput struct {
	Name        string
	CategoryIDs []int64
	Page        domain.PageRequest
}

// ProductInput holds the writable fields of a product, shared by create and
// update. CategoryIDs is the product's FULL category set; on update it
// replaces whatever was stored before.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	ImgURL      *string
	Date        time.Time
	CategoryIDs []int64
}

// Validate checks all fields against the given instant and collects all
// errors.
func (i *ProductInput) Validate(now time.Time) error {
	var errs []domain.FieldError

	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if len(name) > 127 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long (max 127)"})
	}

	if strings.TrimSpace(i.Description) == "" {
		errs = append(errs, domain.FieldError{Field: "description", Message: "required"})
	}

	if i.Price <= 0 {
		errs = append(errs, domain.FieldError{Field: "price", Message: "must be positive"})
	}

	if i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "required"})
	} else if i.Date.After(now) {
		errs = append(errs, domain.FieldError{Field: "date", Message: "must not be in the future"})
	}

	for _, id := range i.CategoryIDs {
		if id <= 0 {
			errs = append(errs, domain.FieldError{Field: "category_ids", Message: "ids must be positive"})
			break
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// product builds the domain aggregate persisted for this input.
func (i *ProductInput) product(id int64) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(i.Name),
		Description: strings.TrimSpace(i.Description),
		Price:       i.Price,
		ImgURL:      i.ImgURL,
		Date:        i.Date,
	}
}

// CategoryInput holds the writable fields of a category.
type CategoryInput struct {
	Name string
}

// Validate checks all fields and collects all errors.
func (i *CategoryInput) Validate() error {
	var errs []domain.FieldError

	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if len(name) > 127 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long (max 127)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
