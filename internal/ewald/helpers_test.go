package ewald

import (
	"math"
	"testing"

	"github.com/san-kum/nbforce/internal/cell"
)

const fdStep = 1e-5

// skewedSystem returns a small neutral configuration in a triclinic cell.
func skewedSystem(t *testing.T) ([]float64, []float64, *cell.Cell) {
	t.Helper()
	c, err := cell.New([9]float64{9.0, 0, 0, 1.2, 8.5, 0, -0.7, 0.9, 10.1})
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	pos := []float64{
		0.3, 1.1, 2.0,
		2.1, 0.4, 1.3,
		4.9, 6.2, 7.7,
		6.5, 3.3, 0.8,
	}
	charges := []float64{0.8, -0.5, 0.45, -0.75}
	return pos, charges, c
}

// numGradient estimates dE/dr by central differences.
func numGradient(pos []float64, energy func([]float64) float64) []float64 {
	grad := make([]float64, len(pos))
	work := append([]float64(nil), pos...)
	for i := range pos {
		work[i] = pos[i] + fdStep
		ep := energy(work)
		work[i] = pos[i] - fdStep
		em := energy(work)
		work[i] = pos[i]
		grad[i] = (ep - em) / (2 * fdStep)
	}
	return grad
}

// numVirial estimates dE/d(strain) by central differences, deforming the
// cell and the positions together.
func numVirial(t *testing.T, pos []float64, c *cell.Cell, energy func([]float64, *cell.Cell) float64) []float64 {
	t.Helper()
	const h = 1e-6
	vtens := make([]float64, 9)
	for ab := 0; ab < 9; ab++ {
		var eps [9]float64
		eps[ab] = h
		ep := energy(deformPos(pos, eps), deformCell(t, c, eps))
		eps[ab] = -h
		em := energy(deformPos(pos, eps), deformCell(t, c, eps))
		vtens[ab] = (ep - em) / (2 * h)
	}
	return vtens
}

func deformCell(t *testing.T, c *cell.Cell, eps [9]float64) *cell.Cell {
	t.Helper()
	d, err := c.Deform(eps)
	if err != nil {
		t.Fatalf("deform: %v", err)
	}
	return d
}

func deformPos(pos []float64, eps [9]float64) []float64 {
	out := make([]float64, len(pos))
	for i := 0; i < len(pos)/3; i++ {
		for a := 0; a < 3; a++ {
			v := pos[3*i+a]
			for b := 0; b < 3; b++ {
				v += eps[3*a+b] * pos[3*i+b]
			}
			out[3*i+a] = v
		}
	}
	return out
}

func assertClose(t *testing.T, what string, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length %d, expected %d", what, len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("%s[%d]: analytic %.10g, numeric %.10g", what, i, got[i], want[i])
		}
	}
}
