package pagination

import "testing"

func TestNewClampsPage(t *testing.T) {
	cases := []struct {
		name           string
		count, page    int
		wantPage       int
		wantTotal      int
		wantStart, end int
	}{
		{"empty list any page", 0, 7, 1, 1, 0, 0},
		{"empty list negative page", 0, -3, 1, 1, 0, 0},
		{"single page", 3, 1, 1, 1, 0, 3},
		{"page zero clamps to first", 12, 0, 1, 3, 0, 5},
		{"negative page clamps to first", 12, -99, 1, 3, 0, 5},
		{"stale page clamps to last", 12, 6, 3, 3, 10, 12},
		{"huge page clamps to last", 12, 1 << 20, 3, 3, 10, 12},
		{"exact boundary", 10, 2, 2, 2, 5, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := New(tc.count, tc.page, 5)
			if w.Page != tc.wantPage {
				t.Errorf("Page = %d, want %d", w.Page, tc.wantPage)
			}
			if w.TotalPages != tc.wantTotal {
				t.Errorf("TotalPages = %d, want %d", w.TotalPages, tc.wantTotal)
			}
			if w.Start != tc.wantStart || w.End != tc.end {
				t.Errorf("window = [%d,%d), want [%d,%d)", w.Start, w.End, tc.wantStart, tc.end)
			}
		})
	}
}

func TestNavigationControls(t *testing.T) {
	// 12 messages, page size 5: page 1 shows 0-4 with next only,
	// page 3 shows 10-11 with prev only
	first := New(12, 1, 5)
	if first.HasPrev() {
		t.Error("page 1 should not have prev")
	}
	if !first.HasNext() {
		t.Error("page 1 should have next")
	}
	if first.Start != 0 || first.End != 5 {
		t.Errorf("page 1 window = [%d,%d), want [0,5)", first.Start, first.End)
	}

	last := New(12, 3, 5)
	if !last.HasPrev() {
		t.Error("page 3 should have prev")
	}
	if last.HasNext() {
		t.Error("page 3 should not have next")
	}
	if last.Start != 10 || last.End != 12 {
		t.Errorf("page 3 window = [%d,%d), want [10,12)", last.Start, last.End)
	}
}

func TestDegeneratePageSize(t *testing.T) {
	w := New(4, 1, 0)
	if w.PageSize != 1 {
		t.Errorf("PageSize = %d, want 1", w.PageSize)
	}
	if w.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", w.TotalPages)
	}
}
