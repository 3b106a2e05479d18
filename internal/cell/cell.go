// Package cell describes a 3D periodic simulation cell and its reciprocal lattice.
package cell

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nbforce/internal/pes"
)

// Cell holds the real-space lattice vectors (rows of Rvecs), the matching
// reciprocal vectors (rows of Gvecs, without the 2π factor) and the volume.
// r_i · g_j = δ_ij.
type Cell struct {
	Rvecs  [9]float64
	Gvecs  [9]float64
	Volume float64
}

// New derives the reciprocal lattice and the volume from the lattice vectors.
func New(rvecs [9]float64) (*Cell, error) {
	r := mat.NewDense(3, 3, append([]float64(nil), rvecs[:]...))
	vol := math.Abs(mat.Det(r))
	if vol == 0 {
		return nil, pes.InvalidParameter("volume", 0)
	}

	var inv mat.Dense
	if err := inv.Inverse(r); err != nil {
		return nil, fmt.Errorf("cell: lattice vectors not invertible: %w", err)
	}

	c := &Cell{Rvecs: rvecs, Volume: vol}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c.Gvecs[3*i+j] = inv.At(j, i)
		}
	}
	return c, nil
}

// Cubic returns a cubic cell with edge length l.
func Cubic(l float64) (*Cell, error) {
	return New([9]float64{l, 0, 0, 0, l, 0, 0, 0, l})
}

// MIC reduces delta to the periodic image closest to the origin in
// fractional coordinates.
func (c *Cell) MIC(delta *[3]float64) {
	var frac [3]float64
	for i := 0; i < 3; i++ {
		g := c.Gvecs[3*i : 3*i+3]
		f := g[0]*delta[0] + g[1]*delta[1] + g[2]*delta[2]
		frac[i] = f - math.Round(f)
	}
	for k := 0; k < 3; k++ {
		delta[k] = frac[0]*c.Rvecs[k] + frac[1]*c.Rvecs[3+k] + frac[2]*c.Rvecs[6+k]
	}
}

// RSpacings returns the distances between neighboring lattice planes.
func (c *Cell) RSpacings() [3]float64 {
	var s [3]float64
	for i := 0; i < 3; i++ {
		s[i] = 1 / floats.Norm(c.Gvecs[3*i:3*i+3], 2)
	}
	return s
}

// GSpacings returns the distances between neighboring reciprocal lattice planes.
func (c *Cell) GSpacings() [3]float64 {
	var s [3]float64
	for i := 0; i < 3; i++ {
		s[i] = 1 / floats.Norm(c.Rvecs[3*i:3*i+3], 2)
	}
	return s
}

// GMax returns the per-axis k-space truncation that covers a reciprocal
// cutoff gcut (in units without the 2π factor).
func (c *Cell) GMax(gcut float64) [3]int {
	var gmax [3]int
	gs := c.GSpacings()
	for i := 0; i < 3; i++ {
		n := int(math.Ceil(gcut/gs[i] - 0.5))
		if n < 0 {
			n = 0
		}
		gmax[i] = n
	}
	return gmax
}

// Deform returns a copy of the cell with each lattice vector mapped through
// (I + eps), eps row-major.
func (c *Cell) Deform(eps [9]float64) (*Cell, error) {
	var r [9]float64
	for i := 0; i < 3; i++ {
		for a := 0; a < 3; a++ {
			v := c.Rvecs[3*i+a]
			for b := 0; b < 3; b++ {
				v += eps[3*a+b] * c.Rvecs[3*i+b]
			}
			r[3*i+a] = v
		}
	}
	return New(r)
}
