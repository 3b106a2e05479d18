package pairpot

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/nlist"
	"github.com/san-kum/nbforce/internal/pes"
	"github.com/san-kum/nbforce/internal/scaling"
)

// PairPot applies one form to the neighbors of a center atom. The zero
// value is not ready: a form and a positive cutoff must be set first.
type PairPot struct {
	form   Form
	rcut   float64
	smooth bool
	width  float64
}

// Option configures a PairPot built by New.
type Option func(*PairPot) error

// WithSmoothing turns on the switching function with the given width.
func WithSmoothing(width float64) Option {
	return func(p *PairPot) error { return p.SetSmooth(true, width) }
}

// New returns a ready pair potential.
func New(form Form, rcut float64, opts ...Option) (*PairPot, error) {
	if form == nil {
		return nil, pes.ErrNotReady
	}
	p := &PairPot{}
	p.SetForm(form)
	if err := p.SetRcut(rcut); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PairPot) SetForm(form Form) { p.form = form }
func (p *PairPot) Form() Form        { return p.form }
func (p *PairPot) Rcut() float64     { return p.rcut }

// SetRcut sets the cutoff radius, which must be positive.
func (p *PairPot) SetRcut(rcut float64) error {
	if !(rcut > 0) || math.IsInf(rcut, 0) {
		return pes.InvalidParameter("rcut", rcut)
	}
	p.rcut = rcut
	return nil
}

// SetSmooth toggles the switching function that brings energy and force to
// zero over the last width length units before the cutoff.
func (p *PairPot) SetSmooth(on bool, width float64) error {
	if width < 0 || math.IsNaN(width) {
		return pes.InvalidParameter("width", width)
	}
	if on && width == 0 {
		return pes.InvalidParameter("width", width)
	}
	p.smooth = on
	p.width = width
	return nil
}

// Smooth reports whether smoothing is on and its width.
func (p *PairPot) Smooth() (bool, float64) { return p.smooth, p.width }

// Ready reports whether Compute can be called.
func (p *PairPot) Ready() bool { return p.form != nil && p.rcut > 0 }

// Name returns the form name, or "unset".
func (p *PairPot) Name() string {
	if p.form == nil {
		return "unset"
	}
	return p.form.Name()
}

// Compute returns the energy of center with every listed neighbor inside the
// cutoff, and accumulates the gradient and virial when requested. Pairs with
// scale 0 in row are skipped, other scales in [0, 1] multiply energy and force.
// Inputs are validated before any buffer is touched.
func (p *PairPot) Compute(center int, neighs []nlist.Neighbor, row []scaling.Entry, gpos, vtens []float64) (float64, error) {
	if !p.Ready() {
		return 0, pes.ErrNotReady
	}
	natom := p.form.NAtom()
	if center < 0 || center >= natom {
		return 0, fmt.Errorf("%w: center %d for %d atoms", pes.ErrDimensionMismatch, center, natom)
	}
	if err := pes.CheckBuffers(natom, gpos, vtens); err != nil {
		return 0, err
	}
	for i := range neighs {
		n := &neighs[i]
		if n.Other < 0 || n.Other >= natom {
			return 0, fmt.Errorf("%w: neighbor %d for %d atoms", pes.ErrDimensionMismatch, n.Other, natom)
		}
		if !(n.D > 0) {
			return 0, &pes.PairError{Center: center, Other: n.Other, Distance: n.D}
		}
	}
	for _, e := range row {
		if !(e.Scale >= 0 && e.Scale <= 1) {
			return 0, pes.InvalidParameter("scale", e.Scale)
		}
	}

	energy := 0.0
	for i := range neighs {
		n := &neighs[i]
		if n.D > p.rcut {
			continue
		}
		scale, _ := scaling.Lookup(row, n.Other)
		if scale == 0 {
			continue
		}
		e, dedr := p.form.Eval(center, n.Other, n.D)
		if p.smooth {
			s, ds := switch3(n.D, p.rcut, p.width)
			dedr = dedr*s + e*ds
			e *= s
		}
		if scale < 1 {
			e *= scale
			dedr *= scale
		}
		energy += e
		if gpos != nil || vtens != nil {
			g := dedr / n.D
			if gpos != nil {
				pes.AddPairGradient(gpos, center, n.Other, &n.Delta, g)
			}
			if vtens != nil {
				pes.AddPairVirial(vtens, &n.Delta, g)
			}
		}
	}
	return energy, nil
}
