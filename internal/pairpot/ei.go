package pairpot

import (
	"math"

	"github.com/san-kum/nbforce/internal/pes"
)

// EI is screened electrostatics q_i·q_j·erfc(αr)/r, the real-space part of
// an Ewald sum. Alpha = 0 gives the bare Coulomb law.
type EI struct {
	charges []float64
	alpha   float64
}

func NewEI(charges []float64, alpha float64) (*EI, error) {
	if _, err := checkParams("ei", charges); err != nil {
		return nil, err
	}
	for _, q := range charges {
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return nil, pes.InvalidParameter("charge", q)
		}
	}
	if !(alpha >= 0) || math.IsInf(alpha, 0) {
		return nil, pes.InvalidParameter("alpha", alpha)
	}
	return &EI{charges: clone(charges), alpha: alpha}, nil
}

func (f *EI) Name() string   { return "ei" }
func (f *EI) NAtom() int     { return len(f.charges) }
func (f *EI) Alpha() float64 { return f.alpha }
func (f *EI) sealed()        {}

func (f *EI) Eval(i, j int, d float64) (float64, float64) {
	qq := f.charges[i] * f.charges[j]
	if f.alpha == 0 {
		e := qq / d
		return e, -e / d
	}
	x := f.alpha * d
	pot := math.Erfc(x) / d
	e := qq * pot
	dedr := -qq * (pot + 2*f.alpha/math.Sqrt(math.Pi)*math.Exp(-x*x)) / d
	return e, dedr
}
