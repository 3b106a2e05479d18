package scaling

import (
	"testing"
)

func TestFromBondsChain(t *testing.T) {
	// 0-1-2-3-4
	bonds := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}}
	table, err := FromBonds(5, bonds, 0, 0.5, 0.8)
	if err != nil {
		t.Fatalf("from bonds failed: %v", err)
	}

	tests := []struct {
		i, j  int
		scale float64
		found bool
	}{
		{0, 1, 0, true},
		{0, 2, 0.5, true},
		{0, 3, 0.8, true},
		{0, 4, 1, false},
		{2, 4, 0.5, true},
		{4, 1, 0.8, true},
	}

	for _, tt := range tests {
		s, ok := Lookup(table.Row(tt.i), tt.j)
		if ok != tt.found || s != tt.scale {
			t.Errorf("(%d,%d): expected (%g,%v), got (%g,%v)", tt.i, tt.j, tt.scale, tt.found, s, ok)
		}
	}

	if err := table.Validate(); err != nil {
		t.Errorf("expected symmetric table, got %v", err)
	}
}

func TestFromBondsRing(t *testing.T) {
	// Three-membered ring: every pair is 1-2.
	table, err := FromBonds(3, [][2]int{{0, 1}, {1, 2}, {2, 0}}, 0, 0.5, 1)
	if err != nil {
		t.Fatalf("from bonds failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if len(table[i]) != 2 {
			t.Errorf("row %d: expected 2 entries, got %d", i, len(table[i]))
		}
		for _, e := range table[i] {
			if e.Scale != 0 {
				t.Errorf("row %d: expected scale 0 for %d, got %g", i, e.Other, e.Scale)
			}
		}
	}
}

func TestFromBondsInvalid(t *testing.T) {
	if _, err := FromBonds(2, [][2]int{{0, 2}}, 0, 0, 0); err == nil {
		t.Error("expected error for out-of-range bond")
	}
	if _, err := FromBonds(2, nil, -0.1, 0, 0); err == nil {
		t.Error("expected error for negative scale")
	}
}

func TestValidateAsymmetric(t *testing.T) {
	table := Table{{{Other: 1, Scale: 0.5}}, {}}
	if err := table.Validate(); err == nil {
		t.Error("expected error for asymmetric table")
	}
}
