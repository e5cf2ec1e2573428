package domain

import "time"

// Product is a catalog product aggregate. Categories is an id-keyed set:
// loading code must never produce two entries with the same category id.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	ImgURL      *string
	Date        time.Time
	Categories  []Category
}

// ProductSummary is the lightweight (id, name) projection returned by the
// paginated search query. The full aggregate is fetched in a second phase
// keyed by these ids.
type ProductSummary struct {
	ID   int64
	Name string
}

// ProductFilter narrows a product search. Zero values mean "match all":
// an empty Name skips the name predicate, an empty CategoryIDs slice skips
// the category predicate.
type ProductFilter struct {
	Name        string
	CategoryIDs []int64
}

// HasCategory reports whether the product is linked to the given category id.
func (p *Product) HasCategory(categoryID int64) bool {
	for _, c := range p.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
