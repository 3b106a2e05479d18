package config

import "sort"

// Presets maps a name to a builder so every caller gets its own copy.
var Presets = map[string]func() *Config{
	"ion_pair":  ionPair,
	"lj_dimer":  ljDimer,
	"nacl":      naclCrystal,
	"water_box": waterBox,
}

// ionPair is a +1/-1 pair two units apart in a cubic box of side 10.
func ionPair() *Config {
	cfg := DefaultConfig()
	cfg.Name = "ion_pair"
	cfg.System = SystemConfig{
		Cell:      []float64{10, 0, 0, 0, 10, 0, 0, 0, 10},
		Positions: []float64{4, 5, 5, 6, 5, 5},
		Charges:   []float64{1, -1},
		Masses:    []float64{22.99, 35.45},
	}
	cfg.Ewald = EwaldConfig{
		Enabled:    true,
		Alpha:      0.3,
		GMax:       []int{5, 5, 5},
		AlphaScale: DefaultAlphaScale,
		GCutScale:  DefaultGCutScale,
	}
	cfg.Pair.Rcut = 4.5
	return cfg
}

func ljDimer() *Config {
	cfg := DefaultConfig()
	cfg.Name = "lj_dimer"
	cfg.System = SystemConfig{
		Positions: []float64{0, 0, 0, 3.9, 0, 0},
		Masses:    []float64{39.95, 39.95},
	}
	cfg.Pair = PairConfig{
		Rcut:   10,
		Skin:   1,
		Smooth: true,
		Width:  DefaultWidth,
		Terms: []TermConfig{
			{Kind: KindLJ, Sigma: []float64{3.4, 3.4}, Epsilon: []float64{0.238, 0.238}},
		},
	}
	cfg.MD.Dt = 2
	cfg.MD.Steps = 1000
	return cfg
}

// naclCrystal is a 2x2x2 supercell of rock salt with Born-Mayer
// repulsion and damped dispersion on top of Ewald electrostatics.
func naclCrystal() *Config {
	const a = 5.64
	cfg := DefaultConfig()
	cfg.Name = "nacl"
	basis := [][3]float64{
		{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0},
	}
	var pos, charges, masses, amp, b, r0, c6 []float64
	for ix := 0; ix < 2; ix++ {
		for iy := 0; iy < 2; iy++ {
			for iz := 0; iz < 2; iz++ {
				for _, f := range basis {
					for s, shift := range [2]float64{0, 0.5} {
						pos = append(pos,
							a*(float64(ix)+f[0]+shift),
							a*(float64(iy)+f[1]),
							a*(float64(iz)+f[2]),
						)
						if s == 0 {
							charges = append(charges, 1)
							masses = append(masses, 22.99)
							amp = append(amp, 87.0)
							b = append(b, 3.15)
							r0 = append(r0, 1.14)
							c6 = append(c6, 0.12)
						} else {
							charges = append(charges, -1)
							masses = append(masses, 35.45)
							amp = append(amp, 87.0)
							b = append(b, 3.15)
							r0 = append(r0, 1.64)
							c6 = append(c6, 3.8)
						}
					}
				}
			}
		}
	}
	cfg.System = SystemConfig{
		Cell:      []float64{2 * a, 0, 0, 0, 2 * a, 0, 0, 0, 2 * a},
		Positions: pos,
		Charges:   charges,
		Masses:    masses,
	}
	cfg.Ewald.Enabled = true
	cfg.Ewald.Neutralizing = true
	cfg.Pair = PairConfig{
		Rcut:   5.5,
		Smooth: true,
		Width:  1.0,
		Terms: []TermConfig{
			{Kind: KindExpRep, Amp: amp, AmpMix: "geometric", B: b, BMix: "arithmetic"},
			{Kind: KindGrimme, R0: r0, C6: c6, S6: 0.75},
		},
	}
	cfg.MD.Dt = 1
	return cfg
}

// waterBox holds a cluster of four water molecules in a periodic box with
// MM3 van der Waals and point charges. Intramolecular pairs are excluded.
func waterBox() *Config {
	cfg := DefaultConfig()
	cfg.Name = "water_box"
	sites := [][3]float64{{3, 3, 3}, {6.1, 3.2, 5.8}, {3.3, 6.2, 6.1}, {6.2, 6.0, 3.1}}
	var pos, charges, masses, sigma, epsilon []float64
	var bonds [][]int
	for m, o := range sites {
		pos = append(pos,
			o[0], o[1], o[2],
			o[0]+0.757, o[1]+0.586, o[2],
			o[0]-0.757, o[1]+0.586, o[2],
		)
		charges = append(charges, -0.8, 0.4, 0.4)
		masses = append(masses, 16.0, 1.008, 1.008)
		sigma = append(sigma, 3.64, 3.24, 3.24)
		epsilon = append(epsilon, 0.059, 0.020, 0.020)
		bonds = append(bonds, []int{3 * m, 3*m + 1}, []int{3 * m, 3*m + 2})
	}
	cfg.System = SystemConfig{
		Cell:      []float64{12, 0, 0, 0, 12, 0, 0, 0, 12},
		Positions: pos,
		Charges:   charges,
		Masses:    masses,
		Bonds:     bonds,
	}
	cfg.Ewald.Enabled = true
	cfg.Ewald.Smooth = true
	cfg.Pair = PairConfig{
		Rcut:   5.9,
		Smooth: true,
		Width:  1.5,
		Terms: []TermConfig{
			{Kind: KindMM3, Sigma: sigma, Epsilon: epsilon},
		},
	}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
