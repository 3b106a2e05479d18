package ff_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbforce/internal/cell"
	"github.com/san-kum/nbforce/internal/config"
	"github.com/san-kum/nbforce/internal/ff"
	"github.com/san-kum/nbforce/internal/nlist"
	"github.com/san-kum/nbforce/internal/pairpot"
	"github.com/san-kum/nbforce/internal/pes"
)

func partNames(f *ff.ForceField) []string {
	names := make([]string, len(f.Parts))
	for i, p := range f.Parts {
		names[i] = p.Name()
	}
	return names
}

func build(cfg *config.Config) *ff.ForceField {
	f, err := ff.Build(cfg)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return f
}

func energy(f *ff.ForceField) float64 {
	e, err := f.Compute(nil, nil)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return e
}

// rattle displaces every coordinate by a small deterministic amount.
func rattle(cfg *config.Config, amount float64) {
	for i := range cfg.System.Positions {
		cfg.System.Positions[i] += amount * math.Sin(1.7*float64(i)+0.3)
	}
}

var _ = Describe("Build", func() {
	It("assembles the Ewald parts for a periodic system", func() {
		f := build(config.GetPreset("ion_pair"))
		Expect(partNames(f)).To(Equal([]string{"pair_ei", "ewald_reci", "ewald_cor"}))

		reci := f.Part("ewald_reci").(*ff.EwaldReci)
		Expect(reci.Alpha()).To(Equal(0.3))
		Expect(reci.GMax()).To(Equal([3]int{5, 5, 5}))
	})

	It("derives alpha and the k-space truncation from the cutoff", func() {
		cfg := config.GetPreset("water_box")
		f := build(cfg)

		alpha := config.DefaultAlphaScale / cfg.Pair.Rcut
		reci := f.Part("ewald_reci").(*ff.EwaldReci)
		Expect(reci.Alpha()).To(BeNumerically("~", alpha, 1e-15))
		Expect(reci.GCut).To(BeNumerically("~", config.DefaultGCutScale*alpha, 1e-15))
		Expect(reci.GMax()).To(Equal(f.System.Cell.GMax(reci.GCut)))
		Expect(partNames(f)).To(ContainElement("pair_mm3"))
	})

	It("adds the neutralizing background on request", func() {
		cfg := config.GetPreset("nacl")
		Expect(partNames(build(cfg))).To(Equal([]string{
			"pair_ei", "ewald_reci", "ewald_cor", "ewald_neut", "pair_exprep", "pair_grimme",
		}))
	})

	It("uses bare Coulomb for an isolated system", func() {
		cfg := config.GetPreset("ion_pair")
		cfg.System.Cell = nil
		f := build(cfg)
		Expect(partNames(f)).To(Equal([]string{"pair_ei"}))
		Expect(energy(f)).To(BeNumerically("~", -0.5, 1e-15))
	})

	It("rejects duplicate terms", func() {
		cfg := config.GetPreset("lj_dimer")
		cfg.Pair.Terms = append(cfg.Pair.Terms, cfg.Pair.Terms[0])
		_, err := ff.Build(cfg)
		Expect(err).To(MatchError(ContainSubstring("duplicate part pair_lj")))
	})

	It("reports bad term parameters", func() {
		cfg := config.GetPreset("lj_dimer")
		cfg.Pair.Terms[0].Sigma = []float64{3.4}
		_, err := ff.Build(cfg)
		Expect(err).To(MatchError(pes.ErrDimensionMismatch))

		cfg = config.GetPreset("nacl")
		cfg.Pair.Terms[0].AmpMix = "harmonic"
		_, err = ff.Build(cfg)
		Expect(err).To(MatchError(pes.ErrInvalidParameter))
	})
})

var _ = Describe("ForceField", func() {
	Describe("two opposite charges in a periodic box", func() {
		var full float64

		BeforeEach(func() {
			full = energy(build(config.GetPreset("ion_pair")))
		})

		It("is close to the isolated pair energy", func() {
			// The remainder is the dipole image term -2*pi*p^2/(3V) = -0.0084
			// plus higher multipoles.
			Expect(full).To(BeNumerically("~", -0.5-8*math.Pi/3000, 2e-3))
		})

		It("recovers the full sum from the excluded pair plus bare Coulomb", func() {
			cfg := config.GetPreset("ion_pair")
			cfg.System.Bonds = [][]int{{0, 1}}
			excluded := build(cfg)
			Expect(energy(excluded) - 0.5).To(BeNumerically("~", full, 1e-3))

			for _, pe := range excluded.Energies() {
				if pe.Name == "pair_ei" {
					Expect(pe.Energy).To(BeZero())
				}
			}
		})

		It("does not depend on alpha beyond the real-space truncation", func() {
			cfg := config.GetPreset("ion_pair")
			cfg.Ewald.Alpha = 0.4
			cfg.Ewald.GMax = []int{6, 6, 6}
			Expect(energy(build(cfg))).To(BeNumerically("~", full, 1e-3))
		})
	})

	It("matches the Lennard-Jones law for a dimer", func() {
		f := build(config.GetPreset("lj_dimer"))
		x6 := math.Pow(3.4/3.9, 6)
		Expect(energy(f)).To(BeNumerically("~", 4*0.238*(x6*x6-x6), 1e-14))
	})

	It("reports per-part energies that add up", func() {
		f := build(config.GetPreset("nacl"))
		total := energy(f)
		sum := 0.0
		for _, pe := range f.Energies() {
			sum += pe.Energy
		}
		Expect(sum).To(BeNumerically("~", total, 1e-9*math.Abs(total)))
	})

	It("gives a vanishing gradient on the perfect rock salt lattice", func() {
		f := build(config.GetPreset("nacl"))
		gpos := make([]float64, 3*f.NAtom())
		_, err := f.Compute(gpos, nil)
		Expect(err).NotTo(HaveOccurred())
		for _, g := range gpos {
			Expect(g).To(BeNumerically("~", 0, 1e-8))
		}
	})

	It("zeroes the output buffers before accumulating", func() {
		f := build(config.GetPreset("water_box"))
		fresh := make([]float64, 3*f.NAtom())
		_, err := f.Compute(fresh, nil)
		Expect(err).NotTo(HaveOccurred())

		dirty := make([]float64, len(fresh))
		for i := range dirty {
			dirty[i] = 5
		}
		vtens := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
		_, err = f.Compute(dirty, vtens)
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(Equal(fresh))
	})

	It("follows position updates", func() {
		cfg := config.GetPreset("lj_dimer")
		f := build(cfg)
		before := energy(f)

		pos := append([]float64(nil), cfg.System.Positions...)
		pos[3] = 4.5
		Expect(f.UpdatePos(pos)).To(Succeed())
		Expect(energy(f)).NotTo(Equal(before))

		Expect(f.UpdatePos(pos[:3])).To(MatchError(pes.ErrDimensionMismatch))
	})

	It("includes the neutralizing background of a charged cell", func() {
		c, err := cell.Cubic(10)
		Expect(err).NotTo(HaveOccurred())
		sys := &ff.System{Pos: []float64{1, 2, 3}, Charges: []float64{2}, Cell: c}
		f, err := ff.New(sys, nil, &ff.EwaldNeut{Alpha: 0.5})
		Expect(err).NotTo(HaveOccurred())

		vtens := make([]float64, 9)
		e, err := f.Compute(nil, vtens)
		Expect(err).NotTo(HaveOccurred())
		want := math.Pi * 4 / (2 * 1000 * 0.25)
		Expect(e).To(BeNumerically("~", want, 1e-15))
		Expect(vtens[0]).To(BeNumerically("~", -want, 1e-15))
	})

	It("refuses Ewald parts without a cell", func() {
		sys := &ff.System{Pos: []float64{0, 0, 0, 1, 0, 0}, Charges: []float64{1, -1}}
		reci, err := ff.NewEwaldReci(2, 0.3, 0, [3]int{2, 2, 2})
		Expect(err).NotTo(HaveOccurred())
		f, err := ff.New(sys, nil, reci, &ff.EwaldCor{Alpha: 0.3})
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Compute(nil, nil)
		Expect(err).To(MatchError(ff.ErrNoCell))
	})

	It("needs a neighbor list for pair parts", func() {
		lj, err := pairpot.NewLJ([]float64{3, 3}, []float64{0.1, 0.1})
		Expect(err).NotTo(HaveOccurred())
		pot, err := pairpot.New(lj, 6)
		Expect(err).NotTo(HaveOccurred())
		sys := &ff.System{Pos: []float64{0, 0, 0, 3.5, 0, 0}, Charges: []float64{0, 0}}

		f, err := ff.New(sys, nil, &ff.Pair{Pot: pot})
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Compute(nil, nil)
		Expect(err).To(MatchError(ContainSubstring("neighbor list")))

		short, err := nlist.New(4, 0)
		Expect(err).NotTo(HaveOccurred())
		f, err = ff.New(sys, short, &ff.Pair{Pot: pot})
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Compute(nil, nil)
		Expect(err).To(MatchError(ContainSubstring("below pair_lj cutoff")))
	})

	It("validates the system", func() {
		_, err := ff.New(&ff.System{Pos: []float64{0, 0, 0}, Charges: []float64{1, 2}}, nil)
		Expect(err).To(MatchError(pes.ErrDimensionMismatch))
		_, err = ff.New(&ff.System{Pos: []float64{0, 0, 0}, Charges: []float64{1}, Masses: []float64{1, 1}}, nil)
		Expect(err).To(MatchError(pes.ErrDimensionMismatch))
	})
})

var _ = Describe("Derivative checks", func() {
	DescribeTable("analytic gradient",
		func(name string) {
			cfg := config.GetPreset(name)
			rattle(cfg, 0.05)
			f := build(cfg)
			report, err := ff.CheckGradient(f, 1e-5)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.OK(1e-6)).To(BeTrue(), "max deviation %g, relative %g", report.MaxAbs, report.RelNorm)
			Expect(f.System.Pos).To(Equal(cfg.System.Positions))
		},
		Entry("ion pair", "ion_pair"),
		Entry("LJ dimer", "lj_dimer"),
		Entry("water box", "water_box"),
	)

	DescribeTable("analytic virial",
		func(name string) {
			cfg := config.GetPreset(name)
			rattle(cfg, 0.05)
			f := build(cfg)
			report, err := ff.CheckVirial(f, 1e-6)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.OK(1e-6)).To(BeTrue(), "max deviation %g, relative %g", report.MaxAbs, report.RelNorm)
		},
		Entry("ion pair", "ion_pair"),
		Entry("LJ dimer", "lj_dimer"),
		Entry("water box", "water_box"),
	)

	It("rejects a non-positive step", func() {
		f := build(config.GetPreset("lj_dimer"))
		_, err := ff.CheckGradient(f, 0)
		Expect(err).To(HaveOccurred())
		_, err = ff.CheckVirial(f, -1)
		Expect(err).To(HaveOccurred())
	})
})
