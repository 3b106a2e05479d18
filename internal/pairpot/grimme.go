package pairpot

import (
	"math"

	"github.com/san-kum/nbforce/internal/pes"
)

// DefaultS6 is the global dispersion scale used when none is configured.
const DefaultS6 = 1.1

const grimmeDamp = 20.0

// Grimme is the damped C6 dispersion of Grimme's D2 correction:
// E = -s6·C6_ij/r⁶·f(r), f = 1/(1 + exp(-20(r/R0_ij - 1))),
// with R0_ij = R0_i + R0_j and C6_ij = sqrt(C6_i·C6_j).
type Grimme struct {
	r0 []float64
	c6 []float64
	s6 float64
}

func NewGrimme(r0, c6 []float64, s6 float64) (*Grimme, error) {
	if _, err := checkParams("grimme", r0, c6); err != nil {
		return nil, err
	}
	if err := checkPositive("r0", r0); err != nil {
		return nil, err
	}
	if err := checkNonNegative("c6", c6); err != nil {
		return nil, err
	}
	if !(s6 >= 0) || math.IsInf(s6, 0) {
		return nil, pes.InvalidParameter("s6", s6)
	}
	return &Grimme{r0: clone(r0), c6: clone(c6), s6: s6}, nil
}

func (f *Grimme) Name() string { return "grimme" }
func (f *Grimme) NAtom() int   { return len(f.r0) }
func (f *Grimme) S6() float64  { return f.s6 }
func (f *Grimme) sealed()      {}

func (f *Grimme) Eval(i, j int, d float64) (float64, float64) {
	r0 := f.r0[i] + f.r0[j]
	c6 := f.s6 * math.Sqrt(f.c6[i]*f.c6[j])
	ex := math.Exp(-grimmeDamp * (d/r0 - 1))
	damp := 1 / (1 + ex)
	ddamp := grimmeDamp / r0 * ex * damp * damp
	d2 := d * d
	inv6 := 1 / (d2 * d2 * d2)
	e := -c6 * inv6 * damp
	dedr := c6 * inv6 * (6*damp/d - ddamp)
	return e, dedr
}

func (f *Grimme) tail(i, j int, rcut float64) float64 {
	return numericTail(func(r float64) float64 {
		e, _ := f.Eval(i, j, r)
		return e
	}, rcut)
}
