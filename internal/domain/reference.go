package domain

// Reference handles are id-only stand-ins for stored children, used when
// replacing an aggregate's association set. Building one performs no read;
// existence is checked only when the parent is persisted, where an unknown
// id surfaces as ErrDanglingReference.

// CategoryRef is a lightweight handle to a stored category.
type CategoryRef struct {
	ID int64
}

// RoleRef is a lightweight handle to a stored role.
type RoleRef struct {
	ID int64
}

// CategoryRefs builds a reference set from a caller-supplied id list.
// Duplicates collapse; first-occurrence order is kept.
func CategoryRefs(ids []int64) []CategoryRef {
	refs := make([]CategoryRef, 0, len(ids))
	for _, id := range dedupIDs(ids) {
		refs = append(refs, CategoryRef{ID: id})
	}
	return refs
}

// RoleRefs builds a reference set from a caller-supplied id list.
// Duplicates collapse; first-occurrence order is kept.
func RoleRefs(ids []int64) []RoleRef {
	refs := make([]RoleRef, 0, len(ids))
	for _, id := range dedupIDs(ids) {
		refs = append(refs, RoleRef{ID: id})
	}
	return refs
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
