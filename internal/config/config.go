package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRcut       = 9.0
	DefaultWidth      = 2.0
	DefaultAlphaScale = 3.5
	DefaultGCutScale  = 1.1
	DefaultScale3     = 1.0
	DefaultDt         = 0.5
	DefaultSteps      = 200
	DefaultSample     = 1
)

// Term kinds accepted in PairConfig.Terms.
const (
	KindLJ     = "lj"
	KindMM3    = "mm3"
	KindGrimme = "grimme"
	KindExpRep = "exprep"
	KindEI     = "ei"
)

type Config struct {
	Name     string        `yaml:"name" toml:"name"`
	System   SystemConfig  `yaml:"system" toml:"system"`
	Ewald    EwaldConfig   `yaml:"ewald" toml:"ewald"`
	Scalings ScalingConfig `yaml:"scalings" toml:"scalings"`
	Pair     PairConfig    `yaml:"pair" toml:"pair"`
	MD       MDConfig      `yaml:"md" toml:"md"`
}

// SystemConfig holds the configuration. Cell is empty for an isolated
// system or 9 values, one lattice vector per row.
type SystemConfig struct {
	Cell      []float64 `yaml:"cell,omitempty" toml:"cell,omitempty"`
	Positions []float64 `yaml:"positions" toml:"positions"`
	Charges   []float64 `yaml:"charges,omitempty" toml:"charges,omitempty"`
	Masses    []float64 `yaml:"masses,omitempty" toml:"masses,omitempty"`
	Bonds     [][]int   `yaml:"bonds,omitempty" toml:"bonds,omitempty"`
}

// EwaldConfig controls the electrostatics. Alpha = 0 derives it from
// AlphaScale/rcut, an empty GMax derives it from GCutScale*alpha.
type EwaldConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled"`
	Alpha        float64 `yaml:"alpha,omitempty" toml:"alpha,omitempty"`
	AlphaScale   float64 `yaml:"alpha_scale" toml:"alpha_scale"`
	GMax         []int   `yaml:"gmax,omitempty" toml:"gmax,omitempty"`
	GCutScale    float64 `yaml:"gcut_scale" toml:"gcut_scale"`
	Neutralizing bool    `yaml:"neutralizing" toml:"neutralizing"`
	Smooth       bool    `yaml:"smooth" toml:"smooth"`
}

// ScalingConfig gives the pair scale for atoms 1, 2 and 3 bonds apart.
type ScalingConfig struct {
	Scale1 float64 `yaml:"scale1" toml:"scale1"`
	Scale2 float64 `yaml:"scale2" toml:"scale2"`
	Scale3 float64 `yaml:"scale3" toml:"scale3"`
}

// PairConfig holds the terms sharing one cutoff. TailCorrections adds the
// energy and virial beyond the cutoff of every non-electrostatic term and
// needs a periodic cell.
type PairConfig struct {
	Rcut            float64      `yaml:"rcut" toml:"rcut"`
	Skin            float64      `yaml:"skin" toml:"skin"`
	Smooth          bool         `yaml:"smooth" toml:"smooth"`
	Width           float64      `yaml:"width" toml:"width"`
	TailCorrections bool         `yaml:"tailcorrections" toml:"tailcorrections"`
	Terms           []TermConfig `yaml:"terms,omitempty" toml:"terms,omitempty"`
}

// TermConfig is one pair form with per-atom parameters. Only the fields of
// its Kind are read.
type TermConfig struct {
	Kind    string    `yaml:"kind" toml:"kind"`
	Sigma   []float64 `yaml:"sigma,omitempty" toml:"sigma,omitempty"`
	Epsilon []float64 `yaml:"epsilon,omitempty" toml:"epsilon,omitempty"`
	R0      []float64 `yaml:"r0,omitempty" toml:"r0,omitempty"`
	C6      []float64 `yaml:"c6,omitempty" toml:"c6,omitempty"`
	S6      float64   `yaml:"s6,omitempty" toml:"s6,omitempty"`
	Amp     []float64 `yaml:"amp,omitempty" toml:"amp,omitempty"`
	B       []float64 `yaml:"b,omitempty" toml:"b,omitempty"`
	AmpMix  string    `yaml:"amp_mix,omitempty" toml:"amp_mix,omitempty"`
	AmpCoef float64   `yaml:"amp_mix_coeff,omitempty" toml:"amp_mix_coeff,omitempty"`
	BMix    string    `yaml:"b_mix,omitempty" toml:"b_mix,omitempty"`
	BCoef   float64   `yaml:"b_mix_coeff,omitempty" toml:"b_mix_coeff,omitempty"`
	Charges []float64 `yaml:"charges,omitempty" toml:"charges,omitempty"`
	Alpha   float64   `yaml:"alpha,omitempty" toml:"alpha,omitempty"`
	// Cross overrides the mixed exprep parameters of single atom pairs.
	Cross []CrossConfig `yaml:"cross,omitempty" toml:"cross,omitempty"`
}

type CrossConfig struct {
	Atoms []int   `yaml:"atoms" toml:"atoms"`
	Amp   float64 `yaml:"amp" toml:"amp"`
	B     float64 `yaml:"b" toml:"b"`
}

type MDConfig struct {
	Dt          float64 `yaml:"dt" toml:"dt"`
	Steps       int     `yaml:"steps" toml:"steps"`
	Temperature float64 `yaml:"temperature" toml:"temperature"`
	Seed        int64   `yaml:"seed" toml:"seed"`
	SampleEvery int     `yaml:"sample_every" toml:"sample_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "custom",
		Ewald: EwaldConfig{
			AlphaScale: DefaultAlphaScale,
			GCutScale:  DefaultGCutScale,
		},
		Scalings: ScalingConfig{Scale3: DefaultScale3},
		Pair: PairConfig{
			Rcut:  DefaultRcut,
			Width: DefaultWidth,
		},
		MD: MDConfig{
			Dt:          DefaultDt,
			Steps:       DefaultSteps,
			SampleEvery: DefaultSample,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML file, or TOML when the extension is .toml, on top of
// the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isTOML(path) {
		// TOML goes through the YAML decoder so unset keys keep their defaults.
		var tree *toml.Tree
		if tree, err = toml.LoadBytes(data); err == nil {
			data, err = yaml.Marshal(tree.ToMap())
		}
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// NAtom returns the number of atoms described by the positions.
func (c *Config) NAtom() int { return len(c.System.Positions) / 3 }

// Periodic reports whether a cell is given.
func (c *Config) Periodic() bool { return len(c.System.Cell) > 0 }

// BondPairs converts the bond list to index pairs.
func (c *Config) BondPairs() ([][2]int, error) {
	pairs := make([][2]int, 0, len(c.System.Bonds))
	for i, b := range c.System.Bonds {
		if len(b) != 2 {
			return nil, fmt.Errorf("config: bond %d has %d atoms", i, len(b))
		}
		pairs = append(pairs, [2]int{b[0], b[1]})
	}
	return pairs, nil
}

// ChargesOrZero returns the system charges, or zeros when none are given.
func (c *Config) ChargesOrZero() []float64 {
	if len(c.System.Charges) > 0 {
		return c.System.Charges
	}
	return make([]float64, c.NAtom())
}

// MassesOrUnit returns the system masses, or ones when none are given.
func (c *Config) MassesOrUnit() []float64 {
	if len(c.System.Masses) > 0 {
		return c.System.Masses
	}
	m := make([]float64, c.NAtom())
	for i := range m {
		m[i] = 1
	}
	return m
}

// Validate checks shapes and ranges. Physical consistency of the
// parameters is left to the force field constructors.
func (c *Config) Validate() error {
	s := &c.System
	if len(s.Positions) == 0 || len(s.Positions)%3 != 0 {
		return fmt.Errorf("config: %d position values is not a positive multiple of 3", len(s.Positions))
	}
	natom := c.NAtom()
	if n := len(s.Cell); n != 0 && n != 9 {
		return fmt.Errorf("config: cell has %d values, want 0 or 9", n)
	}
	if n := len(s.Charges); n != 0 && n != natom {
		return fmt.Errorf("config: %d charges for %d atoms", n, natom)
	}
	if n := len(s.Masses); n != 0 && n != natom {
		return fmt.Errorf("config: %d masses for %d atoms", n, natom)
	}
	for i, m := range s.Masses {
		if m <= 0 {
			return fmt.Errorf("config: mass of atom %d is %g", i, m)
		}
	}
	if _, err := c.BondPairs(); err != nil {
		return err
	}

	if c.Pair.Rcut <= 0 {
		return fmt.Errorf("config: rcut must be positive, got %g", c.Pair.Rcut)
	}
	if c.Pair.Skin < 0 {
		return fmt.Errorf("config: skin must not be negative, got %g", c.Pair.Skin)
	}
	if c.Pair.Smooth && c.Pair.Width <= 0 {
		return fmt.Errorf("config: smoothing width must be positive, got %g", c.Pair.Width)
	}
	if c.Pair.TailCorrections && !c.Periodic() {
		return fmt.Errorf("config: tail corrections need a periodic cell")
	}
	for i, t := range c.Pair.Terms {
		switch t.Kind {
		case KindLJ, KindMM3, KindGrimme, KindExpRep, KindEI:
		default:
			return fmt.Errorf("config: term %d has unknown kind %q", i, t.Kind)
		}
		if len(t.Cross) > 0 && t.Kind != KindExpRep {
			return fmt.Errorf("config: term %d (%s) does not take cross parameters", i, t.Kind)
		}
		for k, x := range t.Cross {
			if len(x.Atoms) != 2 {
				return fmt.Errorf("config: term %d cross %d has %d atoms, want 2", i, k, len(x.Atoms))
			}
		}
	}

	e := &c.Ewald
	if e.Alpha < 0 {
		return fmt.Errorf("config: ewald alpha must not be negative, got %g", e.Alpha)
	}
	if e.Enabled && e.Alpha == 0 && e.AlphaScale <= 0 {
		return fmt.Errorf("config: ewald alpha_scale must be positive, got %g", e.AlphaScale)
	}
	if n := len(e.GMax); n != 0 && n != 3 {
		return fmt.Errorf("config: gmax has %d values, want 0 or 3", n)
	}
	if e.Enabled && c.Periodic() && len(e.GMax) == 0 && e.GCutScale <= 0 {
		return fmt.Errorf("config: ewald gcut_scale must be positive, got %g", e.GCutScale)
	}

	if c.MD.Dt <= 0 {
		return fmt.Errorf("config: md dt must be positive, got %g", c.MD.Dt)
	}
	if c.MD.Steps < 0 {
		return fmt.Errorf("config: md steps must not be negative, got %d", c.MD.Steps)
	}
	if c.MD.Temperature < 0 {
		return fmt.Errorf("config: md temperature must not be negative, got %g", c.MD.Temperature)
	}
	return nil
}

// EwaldAlpha returns the configured splitting parameter, or
// AlphaScale/rcut when none is set.
func (c *Config) EwaldAlpha() float64 {
	if c.Ewald.Alpha > 0 {
		return c.Ewald.Alpha
	}
	return c.Ewald.AlphaScale / c.Pair.Rcut
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.System.Cell = cloneFloats(c.System.Cell)
	out.System.Positions = cloneFloats(c.System.Positions)
	out.System.Charges = cloneFloats(c.System.Charges)
	out.System.Masses = cloneFloats(c.System.Masses)
	if c.System.Bonds != nil {
		out.System.Bonds = make([][]int, len(c.System.Bonds))
		for i, b := range c.System.Bonds {
			out.System.Bonds[i] = append([]int(nil), b...)
		}
	}
	out.Ewald.GMax = append([]int(nil), c.Ewald.GMax...)
	if c.Pair.Terms != nil {
		out.Pair.Terms = make([]TermConfig, len(c.Pair.Terms))
		for i, t := range c.Pair.Terms {
			t.Sigma = cloneFloats(t.Sigma)
			t.Epsilon = cloneFloats(t.Epsilon)
			t.R0 = cloneFloats(t.R0)
			t.C6 = cloneFloats(t.C6)
			t.Amp = cloneFloats(t.Amp)
			t.B = cloneFloats(t.B)
			t.Charges = cloneFloats(t.Charges)
			if t.Cross != nil {
				cross := make([]CrossConfig, len(t.Cross))
				for k, x := range t.Cross {
					x.Atoms = append([]int(nil), x.Atoms...)
					cross[k] = x
				}
				t.Cross = cross
			}
			out.Pair.Terms[i] = t
		}
	}
	return &out
}

func cloneFloats(xs []float64) []float64 {
	if xs == nil {
		return nil
	}
	return append([]float64(nil), xs...)
}
