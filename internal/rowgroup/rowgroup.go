// Package rowgroup collapses flattened relational query results into
// aggregates. Denormalized join queries return one row per (parent, child)
// pair; repositories use Flatten to rebuild one aggregate per parent with a
// derived child collection.
package rowgroup

// Flatten groups rows by key in a single pass. The first row seen for a key
// starts the aggregate via start; child is then called for every row of that
// key (including the first) to append its child, if any. Aggregates come out
// in first-seen key order.
//
// All rows sharing a key are trusted to carry identical shared fields; this
// is not re-validated.
func Flatten[K comparable, R any, A any](rows []R, key func(R) K, start func(R) A, child func(*A, R)) []A {
	index := make(map[K]int, len(rows))
	out := make([]A, 0, len(rows))

	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			out = append(out, start(row))
			i = len(out) - 1
			index[k] = i
		}
		child(&out[i], row)
	}

	return out
}
