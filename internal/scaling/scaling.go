// Package scaling builds the per-atom tables that reduce or remove the
// non-bonded interaction between atoms close in the bond graph.
package scaling

import (
	"fmt"
	"sort"

	"github.com/san-kum/nbforce/internal/pes"
)

// Entry scales the interaction between the row's atom and Other.
// Scale 0 removes the pair, 1 keeps it unchanged.
type Entry struct {
	Other int
	Scale float64
}

// Table has one row per atom. Every pair is listed in both rows.
type Table [][]Entry

// Lookup returns the scale for other in row, and whether an entry exists.
func Lookup(row []Entry, other int) (float64, bool) {
	for _, e := range row {
		if e.Other == other {
			return e.Scale, true
		}
	}
	return 1, false
}

// FromBonds derives a table from a bond list. scale1, scale2 and scale3
// apply to atoms separated by one, two and three bonds. Pairs whose scale
// is 1 are left out.
func FromBonds(natom int, bonds [][2]int, scale1, scale2, scale3 float64) (Table, error) {
	scales := [3]float64{scale1, scale2, scale3}
	for i, s := range scales {
		if s < 0 || s > 1 {
			return nil, pes.InvalidParameter(fmt.Sprintf("scale%d", i+1), s)
		}
	}

	adj := make([][]int, natom)
	for _, b := range bonds {
		i, j := b[0], b[1]
		if i < 0 || j < 0 || i >= natom || j >= natom || i == j {
			return nil, fmt.Errorf("scaling: invalid bond (%d, %d) for %d atoms", i, j, natom)
		}
		adj[i] = append(adj[i], j)
		adj[j] = append(adj[j], i)
	}

	table := make(Table, natom)
	dist := make([]int, natom)
	queue := make([]int, 0, natom)
	for center := 0; center < natom; center++ {
		for i := range dist {
			dist[i] = -1
		}
		dist[center] = 0
		queue = append(queue[:0], center)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if dist[cur] == 3 {
				continue
			}
			for _, nb := range adj[cur] {
				if dist[nb] < 0 {
					dist[nb] = dist[cur] + 1
					queue = append(queue, nb)
				}
			}
		}
		for other, d := range dist {
			if d < 1 || scales[d-1] == 1 {
				continue
			}
			table[center] = append(table[center], Entry{Other: other, Scale: scales[d-1]})
		}
		sort.Slice(table[center], func(a, b int) bool {
			return table[center][a].Other < table[center][b].Other
		})
	}
	return table, nil
}

// Validate checks the scale range and that every entry has its mirror.
func (t Table) Validate() error {
	for i, row := range t {
		for _, e := range row {
			if e.Other < 0 || e.Other >= len(t) || e.Other == i {
				return fmt.Errorf("scaling: row %d has invalid partner %d", i, e.Other)
			}
			if e.Scale < 0 || e.Scale > 1 {
				return pes.InvalidParameter("scale", e.Scale)
			}
			if s, ok := Lookup(t[e.Other], i); !ok || s != e.Scale {
				return fmt.Errorf("scaling: pair (%d, %d) is not symmetric", i, e.Other)
			}
		}
	}
	return nil
}

// Row returns the entries of atom i, nil when the table is shorter.
func (t Table) Row(i int) []Entry {
	if i < 0 || i >= len(t) {
		return nil
	}
	return t[i]
}
