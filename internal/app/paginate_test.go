package app

import (
	"math"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	cases := []struct {
		name       string
		page, size int
		want       []int
	}{
		{"first page", 1, 3, []int{1, 2, 3}},
		{"last partial page", 3, 3, []int{7}},
		{"past the end", 4, 3, []int{}},
		{"page zero clamps", 0, 3, []int{1, 2, 3}},
		{"negative page clamps", -5, 3, []int{1, 2, 3}},
		{"zero size", 1, 0, []int{}},
		{"size larger than items", 1, 50, items},
		{"huge page", math.MaxInt, 3, []int{}},
		{"huge page and size", math.MaxInt, math.MaxInt, []int{}},
		{"huge size", 1, math.MaxInt, items},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(items, tc.page, tc.size)
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestPaginatePagesCoverItems(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	for size := 1; size <= 25; size++ {
		var joined []int
		for page := 1; ; page++ {
			chunk := Paginate(items, page, size)
			if len(chunk) == 0 {
				break
			}
			joined = append(joined, chunk...)
		}
		if len(joined) != len(items) {
			t.Fatalf("size %d: pages hold %d items, want %d", size, len(joined), len(items))
		}
		for i, v := range joined {
			if v != i {
				t.Fatalf("size %d: out of order at %d", size, i)
			}
		}
	}
}

func TestPaginateResultCannotGrowIntoItems(t *testing.T) {
	items := []int{1, 2, 3, 4}
	page := Paginate(items, 1, 2)
	_ = append(page, 99)
	if items[2] != 3 {
		t.Fatalf("append through a page overwrote the source: %v", items)
	}
}

func TestNilItemsGiveEmptyPage(t *testing.T) {
	got := Paginate[int](nil, 1, 10)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil page, got %#v", got)
	}
}
