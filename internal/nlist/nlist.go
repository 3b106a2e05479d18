// Package nlist builds periodic half neighbor lists.
//
// For every center atom the list holds the atoms with a lower index that lie
// within the cutoff under the minimum image convention. Each unordered pair
// therefore appears exactly once and self-pairs never appear.
package nlist

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/cell"
	"github.com/san-kum/nbforce/internal/pes"
)

// Neighbor is one entry of a center atom's list. Delta is pos[center] -
// pos[Other] reduced to the nearest periodic image and D its length.
type Neighbor struct {
	Other int
	Delta [3]float64
	D     float64
}

// List owns the per-atom neighbor rows and reuses their storage across updates.
// Pairs are listed up to Rcut + Skin, so Refresh keeps the list complete
// until some atom has moved more than Skin/2 since the last Update.
type List struct {
	Rcut   float64
	Skin   float64
	rows   [][]Neighbor
	builds int
}

// New returns an empty list for the given cutoff and skin.
func New(rcut, skin float64) (*List, error) {
	if rcut <= 0 {
		return nil, pes.InvalidParameter("rcut", rcut)
	}
	if skin < 0 {
		return nil, pes.InvalidParameter("skin", skin)
	}
	return &List{Rcut: rcut, Skin: skin}, nil
}

// Request raises the cutoff if rcut is larger than the current one.
func (l *List) Request(rcut float64) {
	if rcut > l.Rcut {
		l.Rcut = rcut
	}
}

// Update rebuilds all rows for the given positions. A nil cell means an
// isolated system without periodic images.
func (l *List) Update(pos []float64, c *cell.Cell) error {
	if len(pos)%3 != 0 {
		return fmt.Errorf("%w: %d position values", pes.ErrDimensionMismatch, len(pos))
	}
	natom := len(pos) / 3
	reach := l.Rcut + l.Skin
	if c != nil {
		for i, s := range c.RSpacings() {
			if reach > 0.5*s {
				return fmt.Errorf("nlist: cutoff %g exceeds half the plane spacing %g along axis %d", reach, s, i)
			}
		}
	}

	if cap(l.rows) < natom {
		l.rows = make([][]Neighbor, natom)
	}
	l.rows = l.rows[:natom]

	reach2 := reach * reach
	for i := 0; i < natom; i++ {
		row := l.rows[i][:0]
		for j := 0; j < i; j++ {
			delta := [3]float64{
				pos[3*i] - pos[3*j],
				pos[3*i+1] - pos[3*j+1],
				pos[3*i+2] - pos[3*j+2],
			}
			if c != nil {
				c.MIC(&delta)
			}
			d2 := delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2]
			if d2 > reach2 {
				continue
			}
			row = append(row, Neighbor{Other: j, Delta: delta, D: math.Sqrt(d2)})
		}
		l.rows[i] = row
	}
	l.builds++
	return nil
}

// Refresh recomputes Delta and D of the listed pairs for new positions
// without changing which pairs are listed.
func (l *List) Refresh(pos []float64, c *cell.Cell) error {
	if len(pos) != 3*len(l.rows) {
		return fmt.Errorf("%w: %d position values for %d rows", pes.ErrDimensionMismatch, len(pos), len(l.rows))
	}
	for i, row := range l.rows {
		for k := range row {
			n := &row[k]
			j := n.Other
			n.Delta = [3]float64{
				pos[3*i] - pos[3*j],
				pos[3*i+1] - pos[3*j+1],
				pos[3*i+2] - pos[3*j+2],
			}
			if c != nil {
				c.MIC(&n.Delta)
			}
			n.D = math.Sqrt(n.Delta[0]*n.Delta[0] + n.Delta[1]*n.Delta[1] + n.Delta[2]*n.Delta[2])
		}
	}
	return nil
}

// Builds returns the number of completed Update calls.
func (l *List) Builds() int { return l.builds }

// Row returns the neighbors of center.
func (l *List) Row(center int) []Neighbor {
	if center < 0 || center >= len(l.rows) {
		return nil
	}
	return l.rows[center]
}

// NAtom returns the number of rows built by the last Update.
func (l *List) NAtom() int { return len(l.rows) }

// Pairs returns the total number of listed pairs.
func (l *List) Pairs() int {
	n := 0
	for _, row := range l.rows {
		n += len(row)
	}
	return n
}
