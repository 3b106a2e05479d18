package ff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DerivativeReport compares an analytic derivative with central differences.
type DerivativeReport struct {
	Analytic []float64
	Numeric  []float64
	MaxAbs   float64
	RelNorm  float64
}

// OK reports whether the deviation is within tol, absolute or relative to
// the norm of the analytic derivative.
func (r DerivativeReport) OK(tol float64) bool {
	return r.MaxAbs <= tol || r.RelNorm <= tol
}

func newReport(analytic, numeric []float64) DerivativeReport {
	r := DerivativeReport{
		Analytic: analytic,
		Numeric:  numeric,
		MaxAbs:   floats.Distance(analytic, numeric, math.Inf(1)),
	}
	if n := floats.Norm(analytic, 2); n > 0 {
		r.RelNorm = floats.Distance(analytic, numeric, 2) / n
	}
	return r
}

// CheckGradient compares the gradient of f with central differences of
// step h in every Cartesian coordinate. Positions are restored on return.
func CheckGradient(f *ForceField, h float64) (DerivativeReport, error) {
	if h <= 0 {
		return DerivativeReport{}, fmt.Errorf("ff: step must be positive, got %g", h)
	}
	ref := append([]float64(nil), f.System.Pos...)
	defer f.UpdatePos(ref)

	analytic := make([]float64, len(ref))
	if _, err := f.Compute(analytic, nil); err != nil {
		return DerivativeReport{}, err
	}

	numeric := make([]float64, len(ref))
	work := append([]float64(nil), ref...)
	for i := range work {
		work[i] = ref[i] + h
		ep, err := f.energyAt(work)
		if err != nil {
			return DerivativeReport{}, err
		}
		work[i] = ref[i] - h
		em, err := f.energyAt(work)
		if err != nil {
			return DerivativeReport{}, err
		}
		work[i] = ref[i]
		numeric[i] = (ep - em) / (2 * h)
	}
	return newReport(analytic, numeric), nil
}

// CheckVirial compares the virial of f with the energy response to a
// uniform strain x -> (I + eps) x of the positions and the cell.
func CheckVirial(f *ForceField, h float64) (DerivativeReport, error) {
	if h <= 0 {
		return DerivativeReport{}, fmt.Errorf("ff: step must be positive, got %g", h)
	}
	ref := append([]float64(nil), f.System.Pos...)
	refCell := f.System.Cell
	defer func() {
		f.UpdateCell(refCell)
		f.UpdatePos(ref)
	}()

	analytic := make([]float64, 9)
	if _, err := f.Compute(nil, analytic); err != nil {
		return DerivativeReport{}, err
	}

	numeric := make([]float64, 9)
	strained := make([]float64, len(ref))
	for k := 0; k < 9; k++ {
		var e [2]float64
		for s, sign := range [2]float64{1, -1} {
			var eps [9]float64
			eps[k] = sign * h
			if refCell != nil {
				c, err := refCell.Deform(eps)
				if err != nil {
					return DerivativeReport{}, err
				}
				f.UpdateCell(c)
			}
			strain(strained, ref, &eps)
			energy, err := f.energyAt(strained)
			if err != nil {
				return DerivativeReport{}, err
			}
			e[s] = energy
		}
		numeric[k] = (e[0] - e[1]) / (2 * h)
	}
	return newReport(analytic, numeric), nil
}

func (f *ForceField) energyAt(pos []float64) (float64, error) {
	if err := f.UpdatePos(pos); err != nil {
		return 0, err
	}
	return f.Compute(nil, nil)
}

func strain(dst, pos []float64, eps *[9]float64) {
	for i := 0; i < len(pos); i += 3 {
		for a := 0; a < 3; a++ {
			v := pos[i+a]
			for b := 0; b < 3; b++ {
				v += eps[3*a+b] * pos[i+b]
			}
			dst[i+a] = v
		}
	}
}
