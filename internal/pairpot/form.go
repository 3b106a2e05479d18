package pairpot

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/pes"
)

// Form is a radial pair law. Eval returns the energy of the pair (i, j) at
// distance d and its derivative with respect to d. The set of forms is
// closed to this package.
type Form interface {
	Name() string
	NAtom() int
	Eval(i, j int, d float64) (e, dedr float64)
	sealed()
}

// MixRule combines two per-atom parameters into a pair parameter.
type MixRule int

const (
	Geometric MixRule = iota
	Arithmetic
)

func (r MixRule) String() string {
	switch r {
	case Geometric:
		return "geometric"
	case Arithmetic:
		return "arithmetic"
	default:
		return fmt.Sprintf("MixRule(%d)", int(r))
	}
}

// ParseMixRule accepts "geometric" or "arithmetic".
func ParseMixRule(s string) (MixRule, error) {
	switch s {
	case "geometric", "geom":
		return Geometric, nil
	case "arithmetic", "arith":
		return Arithmetic, nil
	}
	return 0, fmt.Errorf("%w: unknown mixing rule %q", pes.ErrInvalidParameter, s)
}

// Mixing blends the chosen rule with the other one:
// x_ij = (1 - Coeff)·Rule(x_i, x_j) + Coeff·other(x_i, x_j).
// Coeff = 0 applies Rule alone.
type Mixing struct {
	Rule  MixRule
	Coeff float64
}

func (m Mixing) validate(name string) error {
	if m.Rule != Geometric && m.Rule != Arithmetic {
		return pes.InvalidParameter(name+".rule", float64(m.Rule))
	}
	if !(m.Coeff >= 0 && m.Coeff <= 1) {
		return pes.InvalidParameter(name+".coeff", m.Coeff)
	}
	return nil
}

func (m Mixing) mix(a, b float64) float64 {
	main, alt := math.Sqrt(a*b), 0.5*(a+b)
	if m.Rule == Arithmetic {
		main, alt = alt, main
	}
	if m.Coeff == 0 {
		return main
	}
	return (1-m.Coeff)*main + m.Coeff*alt
}

// checkParams verifies that every slice has the length of the first one and
// that it is not empty.
func checkParams(name string, params ...[]float64) (int, error) {
	n := len(params[0])
	if n == 0 {
		return 0, fmt.Errorf("%w: %s has no atoms", pes.ErrDimensionMismatch, name)
	}
	for _, p := range params[1:] {
		if len(p) != n {
			return 0, fmt.Errorf("%w: %s parameter lengths %d and %d", pes.ErrDimensionMismatch, name, n, len(p))
		}
	}
	return n, nil
}

func checkPositive(name string, xs []float64) error {
	for _, x := range xs {
		if !(x > 0) || math.IsInf(x, 0) {
			return pes.InvalidParameter(name, x)
		}
	}
	return nil
}

func checkNonNegative(name string, xs []float64) error {
	for _, x := range xs {
		if !(x >= 0) || math.IsInf(x, 0) {
			return pes.InvalidParameter(name, x)
		}
	}
	return nil
}

func clone(xs []float64) []float64 {
	return append([]float64(nil), xs...)
}
