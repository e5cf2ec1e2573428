package domain

import "strings"

// Sort directions accepted by PageRequest.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest describes one page of a sorted result set. Number is
// zero-based. SortBy is a logical key; each query whitelists the keys it
// understands and falls back to its default for anything else.
type PageRequest struct {
	Number    int
	Size      int
	SortBy    string
	Direction string
}

// Normalize clamps size to [1, 100] (default 20), floors the page number
// at zero, and uppercases the direction (default ASC).
func (r *PageRequest) Normalize() {
	if r.Size <= 0 {
		r.Size = defaultPageSize
	}
	if r.Size > maxPageSize {
		r.Size = maxPageSize
	}
	if r.Number < 0 {
		r.Number = 0
	}
	r.Direction = strings.ToUpper(r.Direction)
	switch r.Direction {
	case SortAsc, SortDesc:
	default:
		r.Direction = SortAsc
	}
}

// Offset returns the row offset of the page window.
func (r PageRequest) Offset() int {
	return r.Number * r.Size
}

// Page is one window of a larger result set. Content is in the requested
// sort order; TotalElements counts the whole filtered set, not the window.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// NewPage wraps content into a page echoing the request's window.
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content:       content,
		Number:        req.Number,
		Size:          req.Size,
		TotalElements: total,
	}
}

// TotalPages returns the number of pages in the full result set.
func (p *Page[T]) TotalPages() int64 {
	if p.Size <= 0 {
		return 0
	}
	return (p.TotalElements + int64(p.Size) - 1) / int64(p.Size)
}
