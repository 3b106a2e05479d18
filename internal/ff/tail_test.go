package ff_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbforce/internal/config"
	"github.com/san-kum/nbforce/internal/ff"
	"github.com/san-kum/nbforce/internal/pairpot"
	"github.com/san-kum/nbforce/internal/pes"
)

// ljLattice is a simple cubic Lennard-Jones crystal of n³ atoms with
// sigma = epsilon = 1 and lattice constant a.
func ljLattice(n int, a, rcut float64) *config.Config {
	cfg := config.DefaultConfig()
	l := float64(n) * a
	cfg.System.Cell = []float64{l, 0, 0, 0, l, 0, 0, 0, l}
	var pos, ones []float64
	for ix := 0; ix < n; ix++ {
		for iy := 0; iy < n; iy++ {
			for iz := 0; iz < n; iz++ {
				pos = append(pos, a*float64(ix), a*float64(iy), a*float64(iz))
				ones = append(ones, 1)
			}
		}
	}
	cfg.System.Positions = pos
	cfg.Pair.Rcut = rcut
	cfg.Pair.Terms = []config.TermConfig{{Kind: config.KindLJ, Sigma: ones, Epsilon: ones}}
	return cfg
}

func partEnergy(f *ff.ForceField, name string) float64 {
	for _, pe := range f.Energies() {
		if pe.Name == name {
			return pe.Energy
		}
	}
	Fail("no part " + name)
	return 0
}

var _ = Describe("Tail corrections", func() {
	It("follows every non-electrostatic term", func() {
		cfg := config.GetPreset("nacl")
		cfg.Pair.TailCorrections = true
		f := build(cfg)
		Expect(partNames(f)).To(Equal([]string{
			"pair_ei", "ewald_reci", "ewald_cor", "ewald_neut", "pair_exprep", "pair_grimme",
			"tailcorr_pair_exprep", "tailcorr_pair_grimme",
		}))

		energy(f)
		Expect(partEnergy(f, "tailcorr_pair_exprep")).To(BeNumerically(">", 0))
		Expect(partEnergy(f, "tailcorr_pair_grimme")).To(BeNumerically("<", 0))
	})

	It("skips ei terms", func() {
		cfg := ljLattice(2, 3, 2.5)
		cfg.System.Charges = []float64{1, -1, 1, -1, -1, 1, -1, 1}
		cfg.Pair.Terms = append(cfg.Pair.Terms, config.TermConfig{Kind: config.KindEI, Alpha: 0.4})
		cfg.Pair.TailCorrections = true
		Expect(partNames(build(cfg))).To(Equal([]string{"pair_lj", "pair_ei", "tailcorr_pair_lj"}))
	})

	It("needs a periodic cell", func() {
		cfg := config.GetPreset("lj_dimer")
		cfg.Pair.TailCorrections = true
		_, err := ff.Build(cfg)
		Expect(err).To(MatchError(ContainSubstring("periodic")))

		tail, err := ff.NewTailCorr(build(config.GetPreset("lj_dimer")).Part("pair_lj").(*ff.Pair))
		Expect(err).NotTo(HaveOccurred())
		f, err := ff.New(&ff.System{Pos: []float64{0, 0, 0}, Charges: []float64{0}}, nil, tail)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Compute(nil, nil)
		Expect(err).To(MatchError(ff.ErrNoCell))
	})

	It("scales the tail integrals with the inverse volume", func() {
		cfg := ljLattice(3, 1.5, 2)
		cfg.Pair.TailCorrections = true
		f := build(cfg)
		tail := f.Part("tailcorr_pair_lj").(*ff.TailCorr)
		ecorr, wcorr := tail.Sums()

		vtens := make([]float64, 9)
		_, err := f.Compute(nil, vtens)
		Expect(err).NotTo(HaveOccurred())
		volume := f.System.Cell.Volume
		Expect(partEnergy(f, "tailcorr_pair_lj")).To(BeNumerically("~", 2*math.Pi*ecorr/volume, 1e-15))

		// The pair part contributes a symmetric virial. The tail adds the same
		// amount to each diagonal element only.
		bare := ljLattice(3, 1.5, 2)
		ref := make([]float64, 9)
		_, err = build(bare).Compute(nil, ref)
		Expect(err).NotTo(HaveOccurred())
		w := 2 * math.Pi * wcorr / volume
		for k := range vtens {
			want := ref[k]
			if k%4 == 0 {
				want += w
			}
			Expect(vtens[k]).To(BeNumerically("~", want, 1e-12), "element %d", k)
		}
	})

	It("has the strain derivative of its energy as virial when the pair energy vanishes at the cutoff", func() {
		// At rcut = sigma the Lennard-Jones energy is zero, so the virial of
		// the tail has no contribution from pairs crossing the cutoff.
		cfg := config.DefaultConfig()
		cfg.System.Cell = []float64{20, 0, 0, 0, 20, 0, 0, 0, 20}
		cfg.System.Positions = []float64{1, 1, 1, 6, 2, 1, 2, 7, 3, 9, 9, 9}
		cfg.Pair.Rcut = 3
		cfg.Pair.TailCorrections = true
		cfg.Pair.Terms = []config.TermConfig{{
			Kind: config.KindLJ, Sigma: []float64{3, 3, 3, 3}, Epsilon: []float64{0.2, 0.2, 0.2, 0.2},
		}}
		f := build(cfg)

		report, err := ff.CheckVirial(f, 1e-6)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.OK(1e-6)).To(BeTrue(), "max deviation %g, relative %g", report.MaxAbs, report.RelNorm)

		e := energy(f)
		Expect(e).To(BeNumerically("<", 0))
		Expect(report.Analytic[0]).To(BeNumerically("~", -e, 1e-15))
	})

	It("makes the lattice energy less sensitive to the cutoff", func() {
		spread := func(tail bool) float64 {
			var e [2]float64
			for k, rc := range []float64{2.6, 4.1} {
				cfg := ljLattice(8, 1.1, rc)
				cfg.Pair.TailCorrections = tail
				e[k] = energy(build(cfg))
			}
			return math.Abs(e[0] - e[1])
		}
		raw, corrected := spread(false), spread(true)
		Expect(raw).To(BeNumerically(">", 100))
		Expect(corrected).To(BeNumerically("<", raw/10))
	})
})

var _ = Describe("Exprep cross parameters", func() {
	It("override the mixing rules of the listed pair", func() {
		cfg := config.GetPreset("nacl")
		cfg.Pair.Terms[0].Cross = []config.CrossConfig{{Atoms: []int{0, 1}, Amp: 120, B: 3.4}}
		f := build(cfg)
		rep := f.Part("pair_exprep").(*ff.Pair).Pot.Form().(*pairpot.ExpRep)
		amp, b := rep.Pair(1, 0)
		Expect(amp).To(Equal(120.0))
		Expect(b).To(Equal(3.4))

		cfg.Pair.Terms[0].Cross[0].Atoms = []int{0, 999}
		_, err := ff.Build(cfg)
		Expect(err).To(MatchError(pes.ErrDimensionMismatch))
	})
})

var _ = Describe("Neighbor list reuse", func() {
	It("refreshes distances for moves within half the skin", func() {
		cfg := config.GetPreset("lj_dimer")
		Expect(cfg.Pair.Skin).To(Equal(1.0))
		f := build(cfg)
		energy(f)
		Expect(f.NList.Builds()).To(Equal(1))

		pos := append([]float64(nil), cfg.System.Positions...)
		pos[3] += 0.3
		Expect(f.UpdatePos(pos)).To(Succeed())
		moved := energy(f)
		Expect(f.NList.Builds()).To(Equal(1))

		ref := cfg.Clone()
		ref.System.Positions = append([]float64(nil), pos...)
		Expect(moved).To(Equal(energy(build(ref))))

		pos[3] += 0.3
		Expect(f.UpdatePos(pos)).To(Succeed())
		energy(f)
		Expect(f.NList.Builds()).To(Equal(2))
	})

	It("rebuilds after a cell change or with no skin", func() {
		cfg := ljLattice(3, 1.5, 2)
		cfg.Pair.Skin = 0.2
		f := build(cfg)
		energy(f)
		f.UpdateCell(f.System.Cell)
		energy(f)
		Expect(f.NList.Builds()).To(Equal(2))

		cfg.Pair.Skin = 0
		g := build(cfg)
		energy(g)
		Expect(g.UpdatePos(cfg.System.Positions)).To(Succeed())
		energy(g)
		Expect(g.NList.Builds()).To(Equal(2))
	})
})
