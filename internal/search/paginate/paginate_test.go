package paginate

import (
	"reflect"
	"testing"
)

func TestPage(t *testing.T) {
	ranked := []int{10, 20, 30, 40, 50}

	tests := []struct {
		name      string
		skip      int
		limit     int
		maxLimit  int
		wantItems []int
		wantTotal int
	}{
		{"first window", 0, 2, 100, []int{10, 20}, 5},
		{"middle window", 2, 2, 100, []int{30, 40}, 5},
		{"window past end truncated", 3, 10, 100, []int{40, 50}, 5},
		{"skip at end", 5, 2, 100, []int{}, 5},
		{"skip past end", 42, 2, 100, []int{}, 5},
		{"negative skip treated as zero", -3, 2, 100, []int{10, 20}, 5},
		{"limit clamped to max", 0, 50, 3, []int{10, 20, 30}, 5},
		{"zero limit yields empty page", 0, 0, 100, []int{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total := Page(ranked, tt.skip, tt.limit, tt.maxLimit)
			if !reflect.DeepEqual(items, tt.wantItems) {
				t.Errorf("items = %v, want %v", items, tt.wantItems)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}

func TestPageTotalUnaffectedByWindow(t *testing.T) {
	ranked := []string{"a", "b", "c", "d"}
	for skip := 0; skip <= 6; skip++ {
		_, total := Page(ranked, skip, 2, 100)
		if total != 4 {
			t.Fatalf("total = %d at skip %d, want 4", total, skip)
		}
	}
}

func TestPageConcatenationCoversSequence(t *testing.T) {
	ranked := make([]int, 17)
	for i := range ranked {
		ranked[i] = i
	}

	var combined []int
	for skip := 0; ; skip += 5 {
		items, total := Page(ranked, skip, 5, 100)
		combined = append(combined, items...)
		if skip+5 >= total {
			break
		}
	}
	if !reflect.DeepEqual(combined, ranked) {
		t.Errorf("concatenated pages = %v, want original sequence", combined)
	}
}

func TestPageDoesNotAliasInput(t *testing.T) {
	ranked := []int{1, 2, 3}
	items, _ := Page(ranked, 0, 3, 100)
	items[0] = 99
	if ranked[0] != 1 {
		t.Error("page aliases the ranked slice")
	}
}

func TestPageEmptyInput(t *testing.T) {
	items, total := Page([]int{}, 0, 10, 100)
	if len(items) != 0 || total != 0 {
		t.Errorf("Page(empty) = %v, %d; want empty, 0", items, total)
	}
}
