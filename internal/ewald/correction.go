package ewald

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/cell"
	"github.com/san-kum/nbforce/internal/pes"
	"github.com/san-kum/nbforce/internal/scaling"
)

const twoDivSqrtPi = 2 / math.SqrtPi

// Correction returns the real-space Ewald correction for one center atom:
// its self energy -alpha/sqrt(pi)*q^2 and, for each scaled partner with a
// lower index, the removal of the fraction (1-scale) of the erf-screened
// pair interaction that Reciprocal includes at full strength.
//
// Callers sum Correction over all atoms. Entries with Other >= center are
// handled on the call where the roles are swapped. Scales outside [0, 1]
// are rejected before any buffer is touched.
func Correction(pos []float64, center int, charges []float64, c *cell.Cell, alpha float64, row []scaling.Entry, gpos, vtens []float64) (float64, error) {
	natom, err := pes.CheckAtoms(pos, charges)
	if err != nil {
		return 0, err
	}
	if alpha <= 0 || math.IsNaN(alpha) {
		return 0, pes.InvalidParameter("alpha", alpha)
	}
	if center < 0 || center >= natom {
		return 0, fmt.Errorf("%w: center %d for %d atoms", pes.ErrDimensionMismatch, center, natom)
	}
	if err := pes.CheckBuffers(natom, gpos, vtens); err != nil {
		return 0, err
	}
	for _, e := range row {
		if !(e.Scale >= 0 && e.Scale <= 1) {
			return 0, pes.InvalidParameter("scale", e.Scale)
		}
		if e.Other >= center {
			continue
		}
		if e.Other < 0 {
			return 0, fmt.Errorf("%w: scaling partner %d", pes.ErrDimensionMismatch, e.Other)
		}
		delta := pairDelta(pos, center, e.Other, c)
		if d := norm(&delta); d == 0 {
			return 0, &pes.PairError{Center: center, Other: e.Other, Distance: d}
		}
	}

	qc := charges[center]
	energy := -alpha / math.SqrtPi * qc * qc

	for _, e := range row {
		if e.Other >= center || e.Scale == 1 {
			continue
		}
		delta := pairDelta(pos, center, e.Other, c)
		d := norm(&delta)
		x := alpha * d
		pot := math.Erf(x) / d
		fac := (1 - e.Scale) * charges[e.Other] * qc
		if gpos != nil || vtens != nil {
			g := -fac * (twoDivSqrtPi*alpha*math.Exp(-x*x) - pot) / (d * d)
			if gpos != nil {
				pes.AddPairGradient(gpos, center, e.Other, &delta, g)
			}
			if vtens != nil {
				pes.AddPairVirial(vtens, &delta, g)
			}
		}
		energy -= fac * pot
	}
	return energy, nil
}

func pairDelta(pos []float64, i, j int, c *cell.Cell) [3]float64 {
	delta := [3]float64{
		pos[3*i] - pos[3*j],
		pos[3*i+1] - pos[3*j+1],
		pos[3*i+2] - pos[3*j+2],
	}
	if c != nil {
		c.MIC(&delta)
	}
	return delta
}

func norm(v *[3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
