// Package metrics summarizes an MD run from its energy samples.
package metrics

import (
	"math"

	"github.com/san-kum/nbforce/internal/md"
)

type Metric interface {
	Name() string
	Observe(s md.Sample)
	Value() float64
	Reset()
}

// Set feeds every sample to its metrics. It is an md.Observer.
type Set []Metric

func (s Set) OnSample(smp md.Sample) {
	for _, m := range s {
		m.Observe(smp)
	}
}

// Values returns the current value of each metric by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Default is the set recorded for every stored run.
func Default() Set {
	return Set{NewEnergyDrift(), NewFluctuation(), NewMeanTemperature(), NewStability(0.01)}
}

// EnergyDrift is the largest relative deviation of the total energy from
// the first sample.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(s md.Sample) {
	if e.samples == 0 {
		e.initial = s.Total
	}
	e.samples++
	if e.initial != 0 {
		e.maxDrift = math.Max(e.maxDrift, math.Abs(s.Total-e.initial)/math.Abs(e.initial))
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() { *e = EnergyDrift{} }

// Fluctuation is the standard deviation of the total energy, accumulated
// with Welford's update.
type Fluctuation struct {
	n    int
	mean float64
	m2   float64
}

func NewFluctuation() *Fluctuation { return &Fluctuation{} }

func (f *Fluctuation) Name() string { return "energy_rms" }

func (f *Fluctuation) Observe(s md.Sample) {
	f.n++
	d := s.Total - f.mean
	f.mean += d / float64(f.n)
	f.m2 += d * (s.Total - f.mean)
}

func (f *Fluctuation) Value() float64 {
	if f.n < 2 {
		return 0
	}
	return math.Sqrt(f.m2 / float64(f.n))
}

func (f *Fluctuation) Reset() { *f = Fluctuation{} }

type MeanTemperature struct {
	sum     float64
	samples int
}

func NewMeanTemperature() *MeanTemperature { return &MeanTemperature{} }

func (m *MeanTemperature) Name() string { return "mean_temperature" }

func (m *MeanTemperature) Observe(s md.Sample) {
	m.sum += s.Temperature
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTemperature) Reset() { *m = MeanTemperature{} }

// Stability is the fraction of samples with a finite total energy within
// threshold (relative) of the first one.
type Stability struct {
	threshold  float64
	initial    float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(smp md.Sample) {
	if s.samples == 0 {
		s.initial = smp.Total
	}
	s.samples++
	e := smp.Total
	if math.IsNaN(e) || math.IsInf(e, 0) {
		s.violations++
		return
	}
	scale := math.Max(math.Abs(s.initial), 1)
	if math.Abs(e-s.initial) > s.threshold*scale {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return 1 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	*s = Stability{threshold: s.threshold}
}
