package domain

import "testing"

func TestCategoryRefs_DedupKeepsFirstOccurrenceOrder(t *testing.T) {
	t.Parallel()

	refs := CategoryRefs([]int64{3, 1, 3, 2, 1})

	want := []int64{3, 1, 2}
	if len(refs) != len(want) {
		t.Fatalf("length: got %d, want %d", len(refs), len(want))
	}
	for i, id := range want {
		if refs[i].ID != id {
			t.Errorf("position %d: got id %d, want %d", i, refs[i].ID, id)
		}
	}
}

func TestRoleRefs_Dedup(t *testing.T) {
	t.Parallel()

	refs := RoleRefs([]int64{5, 5, 5})
	if len(refs) != 1 || refs[0].ID != 5 {
		t.Fatalf("duplicate ids must collapse to one ref: got %+v", refs)
	}
}

func TestRoleRefs_EmptyAndNil(t *testing.T) {
	t.Parallel()

	if got := RoleRefs(nil); len(got) != 0 {
		t.Errorf("nil input: got %+v, want empty", got)
	}
	if got := RoleRefs([]int64{}); len(got) != 0 {
		t.Errorf("empty input: got %+v, want empty", got)
	}
}
