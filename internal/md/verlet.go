package md

import (
	"fmt"

	"github.com/san-kum/nbforce/internal/ff"
	"github.com/san-kum/nbforce/internal/pes"
)

// Verlet is a velocity Verlet integrator over a force field. The gradient
// of the last step is kept for the next half kick.
type Verlet struct {
	ff   *ff.ForceField
	vel  []float64
	pos  []float64
	gpos []float64
	epot float64
	warm bool
}

// NewVerlet starts from the force field's positions and the given
// velocities, which are copied.
func NewVerlet(f *ff.ForceField, vel []float64) (*Verlet, error) {
	n := len(f.System.Pos)
	if len(vel) != n {
		return nil, fmt.Errorf("%w: %d velocity values, want %d", pes.ErrDimensionMismatch, len(vel), n)
	}
	return &Verlet{
		ff:   f,
		vel:  append([]float64(nil), vel...),
		pos:  append([]float64(nil), f.System.Pos...),
		gpos: make([]float64, n),
	}, nil
}

func (v *Verlet) mass(i int) float64 {
	if m := v.ff.System.Masses; len(m) > 0 {
		return m[i]
	}
	return 1
}

func (v *Verlet) ensureForces() error {
	if v.warm {
		return nil
	}
	e, err := v.ff.Compute(v.gpos, nil)
	if err != nil {
		return err
	}
	v.epot = e
	v.warm = true
	return nil
}

// Step advances the system by dt.
func (v *Verlet) Step(dt float64) error {
	if err := v.ensureForces(); err != nil {
		return err
	}
	halfDt := 0.5 * dt
	for i := range v.pos {
		v.vel[i] -= halfDt * v.gpos[i] / v.mass(i/3)
		v.pos[i] += dt * v.vel[i]
	}
	if err := v.ff.UpdatePos(v.pos); err != nil {
		return err
	}
	e, err := v.ff.Compute(v.gpos, nil)
	if err != nil {
		v.warm = false
		return err
	}
	v.epot = e
	for i := range v.vel {
		v.vel[i] -= halfDt * v.gpos[i] / v.mass(i/3)
	}
	return nil
}

// Potential returns the potential energy at the current positions.
func (v *Verlet) Potential() (float64, error) {
	if err := v.ensureForces(); err != nil {
		return 0, err
	}
	return v.epot, nil
}

func (v *Verlet) Kinetic() float64 {
	ekin := 0.0
	for i, vi := range v.vel {
		ekin += 0.5 * v.mass(i/3) * vi * vi
	}
	return ekin
}

func (v *Verlet) Positions() []float64  { return v.pos }
func (v *Verlet) Velocities() []float64 { return v.vel }
