// Package reconcile merges an ordered, paginated identifier sequence with a
// separately fetched, unordered record set. The search layer paginates over a
// lightweight projection first and loads full records second; the detail
// query returns rows in arbitrary order, so the projection's order has to be
// re-imposed by id.
package reconcile

import (
	"fmt"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// ByID returns the records arranged in orderedIDs order. It builds an
// id-to-record map in one pass and emits lookups in a second, so the input
// order of records never matters and the output order is exactly orderedIDs.
//
// Every ordered id must have exactly one matching record. A missing id means
// the two query phases observed different snapshots; the whole operation
// fails with a wrapped domain.ErrConflict rather than returning a page with
// a silent gap.
func ByID[ID comparable, R any](orderedIDs []ID, records []R, id func(R) ID) ([]R, error) {
	byID := make(map[ID]R, len(records))
	for _, rec := range records {
		byID[id(rec)] = rec
	}

	out := make([]R, 0, len(orderedIDs))
	for _, want := range orderedIDs {
		rec, ok := byID[want]
		if !ok {
			return nil, fmt.Errorf("reconcile: record for id %v missing: %w", want, domain.ErrConflict)
		}
		out = append(out, rec)
	}

	return out, nil
}
