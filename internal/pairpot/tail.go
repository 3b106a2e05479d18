package pairpot

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/san-kum/nbforce/internal/pes"
)

// ErrNoTail is returned for forms whose long-range tail does not converge.
var ErrNoTail = errors.New("pairpot: tail correction diverges")

// tailPoints is the Gauss-Legendre order used for forms without a closed
// form tail.
const tailPoints = 64

// tailer is implemented by forms that decay faster than r⁻³.
type tailer interface {
	// tail returns the integral of r²·E(r) from rcut to infinity.
	tail(i, j int, rcut float64) float64
}

// TailCorrection returns the long-range sums for a homogeneous periodic
// system with this potential truncated at its cutoff. Over all ordered atom
// pairs, self pairs included,
//
//	ecorr = Σ ∫ r²·E(r) dr
//	wcorr = Σ ∫ r³·E'(r) dr / 3 = Σ -rcut³·E(rcut)/3 - ecorr
//
// with the integrals running from rcut to infinity. The energy correction is
// 2π·ecorr/V and every diagonal element of the virial gains 2π·wcorr/V.
// Smoothing and scalings do not enter.
func (p *PairPot) TailCorrection() (ecorr, wcorr float64, err error) {
	if !p.Ready() {
		return 0, 0, pes.ErrNotReady
	}
	t, ok := p.form.(tailer)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoTail, p.form.Name())
	}
	rc := p.rcut
	rc3 := rc * rc * rc
	natom := p.form.NAtom()
	for i := 0; i < natom; i++ {
		for j := 0; j <= i; j++ {
			e, _ := p.form.Eval(i, j, rc)
			integral := t.tail(i, j, rc)
			w := -rc3*e/3 - integral
			if i != j {
				integral *= 2
				w *= 2
			}
			ecorr += integral
			wcorr += w
		}
	}
	if math.IsNaN(ecorr) || math.IsInf(ecorr, 0) || math.IsNaN(wcorr) || math.IsInf(wcorr, 0) {
		return 0, 0, fmt.Errorf("%w: %s at rcut %g", ErrNoTail, p.form.Name(), rc)
	}
	return ecorr, wcorr, nil
}

// expMoment2 is the integral of r²·exp(-b·r) from rcut to infinity.
func expMoment2(b, rcut float64) float64 {
	if b <= 0 {
		return math.Inf(1)
	}
	return math.Exp(-b*rcut) * (rcut*rcut/b + 2*rcut/(b*b) + 2/(b*b*b))
}

// numericTail integrates r²·e(r) from rcut to infinity in the reduced
// variable x = r/rcut so the quadrature follows the length scale of the cutoff.
func numericTail(e func(r float64) float64, rcut float64) float64 {
	f := func(x float64) float64 { return x * x * e(rcut*x) }
	return rcut * rcut * rcut * quad.Fixed(f, 1, math.Inf(1), tailPoints, nil, 0)
}
