// Package md runs constant-energy molecular dynamics on a force field.
package md

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/nbforce/internal/ff"
)

// Sample is the energy bookkeeping of one recorded step. Temperature is in
// energy units (kB = 1).
type Sample struct {
	Step        int
	Time        float64
	Potential   float64
	Kinetic     float64
	Total       float64
	Temperature float64
}

type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	Dt          float64
	Steps       int
	SampleEvery int
	Temperature float64
	Seed        int64
	// Velocities overrides the Maxwell-Boltzmann draw when not nil.
	Velocities []float64
}

type Result struct {
	Samples     []Sample
	StepsTaken  int
	EnergyDrift float64
	Positions   []float64
	Velocities  []float64
}

type Simulator struct {
	ff        *ff.ForceField
	observers []Observer
}

func New(f *ff.ForceField) *Simulator {
	return &Simulator{ff: f}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates cfg.Steps steps of velocity Verlet and records a sample
// every cfg.SampleEvery steps, including the first and the last. The drift
// is the largest relative deviation of the total energy from its start.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	vel := cfg.Velocities
	if vel == nil {
		vel = MaxwellBoltzmann(s.ff.System.Masses, s.ff.NAtom(), cfg.Temperature, cfg.Seed)
	}
	integ, err := NewVerlet(s.ff, vel)
	if err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	result := &Result{Samples: make([]Sample, 0, cfg.Steps/every+2)}

	first, err := s.sample(integ, 0, 0)
	if err != nil {
		return nil, err
	}
	s.record(result, first)
	e0 := first.Total

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, integ)
			return result, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if err := integ.Step(cfg.Dt); err != nil {
			s.finish(result, integ)
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}
		result.StepsTaken++

		smp, err := s.sample(integ, i, t)
		if err != nil {
			s.finish(result, integ)
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}
		if e0 != 0 {
			result.EnergyDrift = math.Max(result.EnergyDrift, math.Abs(smp.Total-e0)/math.Abs(e0))
		}
		if i%every == 0 || i == cfg.Steps {
			s.record(result, smp)
		}
	}
	s.finish(result, integ)
	return result, nil
}

func (s *Simulator) sample(integ *Verlet, step int, t float64) (Sample, error) {
	epot, err := integ.Potential()
	if err != nil {
		return Sample{}, err
	}
	ekin := integ.Kinetic()
	smp := Sample{
		Step:        step,
		Time:        t,
		Potential:   epot,
		Kinetic:     ekin,
		Total:       epot + ekin,
		Temperature: Temperature(ekin, s.ff.NAtom()),
	}
	if math.IsNaN(smp.Total) || math.IsInf(smp.Total, 0) {
		return smp, ErrUnstable
	}
	return smp, nil
}

func (s *Simulator) record(result *Result, smp Sample) {
	result.Samples = append(result.Samples, smp)
	for _, o := range s.observers {
		o.OnSample(smp)
	}
}

func (s *Simulator) finish(result *Result, integ *Verlet) {
	result.Positions = append([]float64(nil), integ.Positions()...)
	result.Velocities = append([]float64(nil), integ.Velocities()...)
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrParameterBounds, cfg.Steps)
	}
	if cfg.Temperature < 0 {
		return fmt.Errorf("%w: temperature must not be negative, got %f", ErrParameterBounds, cfg.Temperature)
	}
	return nil
}

// MaxwellBoltzmann draws velocities at temperature t (kB = 1) and removes
// the center of mass motion. Empty masses count as one.
func MaxwellBoltzmann(masses []float64, natom int, t float64, seed int64) []float64 {
	vel := make([]float64, 3*natom)
	if t == 0 || natom == 0 {
		return vel
	}
	rng := rand.New(rand.NewSource(seed))
	mass := func(i int) float64 {
		if len(masses) > 0 {
			return masses[i]
		}
		return 1
	}
	var p [3]float64
	mtot := 0.0
	for i := 0; i < natom; i++ {
		m := mass(i)
		sd := math.Sqrt(t / m)
		for k := 0; k < 3; k++ {
			vel[3*i+k] = sd * rng.NormFloat64()
			p[k] += m * vel[3*i+k]
		}
		mtot += m
	}
	for i := 0; i < natom; i++ {
		for k := 0; k < 3; k++ {
			vel[3*i+k] -= p[k] / mtot
		}
	}
	return vel
}

// Temperature returns 2·Ekin/(3N) for N atoms.
func Temperature(ekin float64, natom int) float64 {
	if natom == 0 {
		return 0
	}
	return 2 * ekin / (3 * float64(natom))
}
