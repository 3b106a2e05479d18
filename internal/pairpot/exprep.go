package pairpot

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/pes"
)

// ExpRep is pure exponential repulsion A_ij·exp(-B_ij·r), each pair
// parameter built with its own Mixing unless the pair has explicit cross
// parameters.
type ExpRep struct {
	amp    []float64
	b      []float64
	ampMix Mixing
	bMix   Mixing
	cross  map[[2]int][2]float64
}

func NewExpRep(amp []float64, ampMix Mixing, b []float64, bMix Mixing) (*ExpRep, error) {
	if _, err := checkParams("exprep", amp, b); err != nil {
		return nil, err
	}
	if err := checkNonNegative("amp", amp); err != nil {
		return nil, err
	}
	if err := checkNonNegative("b", b); err != nil {
		return nil, err
	}
	if err := ampMix.validate("amp_mix"); err != nil {
		return nil, err
	}
	if err := bMix.validate("b_mix"); err != nil {
		return nil, err
	}
	return &ExpRep{amp: clone(amp), b: clone(b), ampMix: ampMix, bMix: bMix}, nil
}

func (f *ExpRep) Name() string { return "exprep" }
func (f *ExpRep) NAtom() int   { return len(f.amp) }
func (f *ExpRep) sealed()      {}

// SetCross replaces the mixed parameters of the pair (i, j) in both orders.
func (f *ExpRep) SetCross(i, j int, amp, b float64) error {
	n := f.NAtom()
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("%w: exprep cross pair (%d, %d) for %d atoms", pes.ErrDimensionMismatch, i, j, n)
	}
	if !(amp >= 0) || math.IsInf(amp, 0) {
		return pes.InvalidParameter("amp", amp)
	}
	if !(b >= 0) || math.IsInf(b, 0) {
		return pes.InvalidParameter("b", b)
	}
	if f.cross == nil {
		f.cross = make(map[[2]int][2]float64)
	}
	f.cross[pairKey(i, j)] = [2]float64{amp, b}
	return nil
}

// Pair returns the amplitude and decay for (i, j).
func (f *ExpRep) Pair(i, j int) (amp, b float64) {
	if f.cross != nil {
		if c, ok := f.cross[pairKey(i, j)]; ok {
			return c[0], c[1]
		}
	}
	return f.ampMix.mix(f.amp[i], f.amp[j]), f.bMix.mix(f.b[i], f.b[j])
}

func (f *ExpRep) Eval(i, j int, d float64) (float64, float64) {
	amp, b := f.Pair(i, j)
	e := amp * math.Exp(-b*d)
	return e, -b * e
}

func (f *ExpRep) tail(i, j int, rcut float64) float64 {
	amp, b := f.Pair(i, j)
	if amp == 0 {
		return 0
	}
	return amp * expMoment2(b, rcut)
}

func pairKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}
