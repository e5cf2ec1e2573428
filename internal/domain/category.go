package domain

// Category groups products. It owns the inverse side of the
// product-category relation; a category may be referenced by zero or
// more products.
type Category struct {
	ID   int64
	Name string
}
