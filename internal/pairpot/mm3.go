package pairpot

import "math"

const (
	mm3Rep   = 1.84e5
	mm3Steep = 12.0
	mm3Disp  = 2.25
)

// MM3 is the exp-6 van der Waals law of the MM3 force field. Parameters
// combine like LJ.
type MM3 struct {
	sigma   []float64
	epsilon []float64
}

func NewMM3(sigma, epsilon []float64) (*MM3, error) {
	if _, err := checkParams("mm3", sigma, epsilon); err != nil {
		return nil, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return nil, err
	}
	if err := checkNonNegative("epsilon", epsilon); err != nil {
		return nil, err
	}
	return &MM3{sigma: clone(sigma), epsilon: clone(epsilon)}, nil
}

func (f *MM3) Name() string { return "mm3" }
func (f *MM3) NAtom() int   { return len(f.sigma) }
func (f *MM3) sealed()      {}

func (f *MM3) Eval(i, j int, d float64) (float64, float64) {
	sigma := 0.5 * (f.sigma[i] + f.sigma[j])
	epsilon := math.Sqrt(f.epsilon[i] * f.epsilon[j])
	rep := mm3Rep * math.Exp(-mm3Steep*d/sigma)
	x := sigma / d
	x3 := x * x * x
	x6 := x3 * x3
	e := epsilon * (rep - mm3Disp*x6)
	dedr := epsilon * (-mm3Steep/sigma*rep + 6*mm3Disp*x6/d)
	return e, dedr
}

func (f *MM3) tail(i, j int, rcut float64) float64 {
	sigma := 0.5 * (f.sigma[i] + f.sigma[j])
	epsilon := math.Sqrt(f.epsilon[i] * f.epsilon[j])
	x := sigma / rcut
	disp := mm3Disp * sigma * sigma * sigma * x * x * x / 3
	return epsilon * (mm3Rep*expMoment2(mm3Steep/sigma, rcut) - disp)
}
