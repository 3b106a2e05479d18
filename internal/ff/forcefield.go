// Package ff assembles Ewald and pair-potential parts into a force field
// that evaluates the total energy, gradient and virial of a system.
package ff

import (
	"errors"
	"fmt"

	"github.com/san-kum/nbforce/internal/cell"
	"github.com/san-kum/nbforce/internal/nlist"
	"github.com/san-kum/nbforce/internal/pes"
	"github.com/san-kum/nbforce/internal/scaling"
)

// ErrNoCell is returned by the Ewald and tail correction parts for an
// isolated system.
var ErrNoCell = errors.New("ff: part needs a periodic cell")

// System is the configuration seen by the parts. Cell is nil for an
// isolated system.
type System struct {
	Pos      []float64
	Charges  []float64
	Masses   []float64
	Cell     *cell.Cell
	Scalings scaling.Table
}

func (s *System) NAtom() int { return len(s.Pos) / 3 }

// Part is one additive contribution to the energy. Compute accumulates
// into gpos and vtens when they are not nil.
type Part interface {
	Name() string
	Compute(sys *System, nl *nlist.List, gpos, vtens []float64) (float64, error)
}

// PartEnergy is the energy of one part from the last Compute.
type PartEnergy struct {
	Name   string
	Energy float64
}

// ForceField sums its parts. The neighbor list is rebuilt lazily after the
// cell changes or once an atom has moved more than half the list's skin
// since the last build. Smaller moves only refresh the listed distances.
type ForceField struct {
	System *System
	NList  *nlist.List
	Parts  []Part

	energies []float64
	rebuild  bool
	moved    bool
	built    []float64
}

// New validates the system and the part names. nl may be nil when no part
// needs neighbors.
func New(sys *System, nl *nlist.List, parts ...Part) (*ForceField, error) {
	natom, err := pes.CheckAtoms(sys.Pos, sys.Charges)
	if err != nil {
		return nil, err
	}
	if n := len(sys.Masses); n != 0 && n != natom {
		return nil, fmt.Errorf("%w: %d masses for %d atoms", pes.ErrDimensionMismatch, n, natom)
	}
	if n := len(sys.Scalings); n != 0 && n != natom {
		return nil, fmt.Errorf("%w: scaling table with %d rows for %d atoms", pes.ErrDimensionMismatch, n, natom)
	}
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if seen[p.Name()] {
			return nil, fmt.Errorf("ff: duplicate part %s", p.Name())
		}
		seen[p.Name()] = true
	}
	return &ForceField{
		System:   sys,
		NList:    nl,
		Parts:    parts,
		energies: make([]float64, len(parts)),
		rebuild:  true,
	}, nil
}

func (f *ForceField) NAtom() int { return f.System.NAtom() }

// UpdatePos copies pos into the system.
func (f *ForceField) UpdatePos(pos []float64) error {
	if len(pos) != len(f.System.Pos) {
		return fmt.Errorf("%w: %d position values, want %d", pes.ErrDimensionMismatch, len(pos), len(f.System.Pos))
	}
	copy(f.System.Pos, pos)
	if !f.rebuild {
		if f.beyondSkin() {
			f.rebuild = true
		} else {
			f.moved = true
		}
	}
	return nil
}

// beyondSkin reports whether some atom moved more than half the skin since
// the neighbor list was built.
func (f *ForceField) beyondSkin() bool {
	if f.NList == nil {
		return false
	}
	half := 0.5 * f.NList.Skin
	if half == 0 || len(f.built) != len(f.System.Pos) {
		return true
	}
	pos := f.System.Pos
	for i := 0; i < len(pos); i += 3 {
		delta := [3]float64{pos[i] - f.built[i], pos[i+1] - f.built[i+1], pos[i+2] - f.built[i+2]}
		if f.System.Cell != nil {
			f.System.Cell.MIC(&delta)
		}
		if delta[0]*delta[0]+delta[1]*delta[1]+delta[2]*delta[2] > half*half {
			return true
		}
	}
	return false
}

// UpdateCell replaces the periodic cell.
func (f *ForceField) UpdateCell(c *cell.Cell) {
	f.System.Cell = c
	f.rebuild = true
}

// Compute zeroes gpos and vtens, evaluates every part and returns the
// total energy. On error the buffers hold partial sums.
func (f *ForceField) Compute(gpos, vtens []float64) (float64, error) {
	if err := pes.CheckBuffers(f.NAtom(), gpos, vtens); err != nil {
		return 0, err
	}
	pes.Zero(gpos)
	pes.Zero(vtens)
	if f.NList != nil {
		switch {
		case f.rebuild:
			if err := f.NList.Update(f.System.Pos, f.System.Cell); err != nil {
				return 0, err
			}
			f.built = append(f.built[:0], f.System.Pos...)
		case f.moved:
			if err := f.NList.Refresh(f.System.Pos, f.System.Cell); err != nil {
				return 0, err
			}
		}
	}
	f.rebuild, f.moved = false, false

	total := 0.0
	for i, p := range f.Parts {
		e, err := p.Compute(f.System, f.NList, gpos, vtens)
		if err != nil {
			return 0, fmt.Errorf("ff: part %s: %w", p.Name(), err)
		}
		f.energies[i] = e
		total += e
	}
	return total, nil
}

// Energies returns the per-part energies of the last Compute.
func (f *ForceField) Energies() []PartEnergy {
	out := make([]PartEnergy, len(f.Parts))
	for i, p := range f.Parts {
		out[i] = PartEnergy{Name: p.Name(), Energy: f.energies[i]}
	}
	return out
}

// Part returns the part with the given name, or nil.
func (f *ForceField) Part(name string) Part {
	for _, p := range f.Parts {
		if p.Name() == name {
			return p
		}
	}
	return nil
}
