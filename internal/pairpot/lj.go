package pairpot

import "math"

// LJ is the 12-6 Lennard-Jones form with Lorentz-Berthelot combination:
// sigma arithmetic, epsilon geometric.
type LJ struct {
	sigma   []float64
	epsilon []float64
}

func NewLJ(sigma, epsilon []float64) (*LJ, error) {
	if _, err := checkParams("lj", sigma, epsilon); err != nil {
		return nil, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return nil, err
	}
	if err := checkNonNegative("epsilon", epsilon); err != nil {
		return nil, err
	}
	return &LJ{sigma: clone(sigma), epsilon: clone(epsilon)}, nil
}

func (f *LJ) Name() string { return "lj" }
func (f *LJ) NAtom() int   { return len(f.sigma) }
func (f *LJ) sealed()      {}

func (f *LJ) Eval(i, j int, d float64) (float64, float64) {
	sigma := 0.5 * (f.sigma[i] + f.sigma[j])
	epsilon := math.Sqrt(f.epsilon[i] * f.epsilon[j])
	x := sigma / d
	x3 := x * x * x
	x6 := x3 * x3
	e := 4 * epsilon * (x6*x6 - x6)
	dedr := 4 * epsilon * (6*x6 - 12*x6*x6) / d
	return e, dedr
}

func (f *LJ) tail(i, j int, rcut float64) float64 {
	sigma := 0.5 * (f.sigma[i] + f.sigma[j])
	epsilon := math.Sqrt(f.epsilon[i] * f.epsilon[j])
	x := sigma / rcut
	x3 := x * x * x
	x9 := x3 * x3 * x3
	return 4 * epsilon * sigma * sigma * sigma * (x9/9 - x3/3)
}
