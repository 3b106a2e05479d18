package ff

import (
	"fmt"

	"github.com/san-kum/nbforce/internal/cell"
	"github.com/san-kum/nbforce/internal/config"
	"github.com/san-kum/nbforce/internal/nlist"
	"github.com/san-kum/nbforce/internal/pairpot"
	"github.com/san-kum/nbforce/internal/scaling"
)

// Build creates a force field from a validated configuration.
//
// With Ewald enabled a periodic system gets pair_ei, ewald_reci, ewald_cor
// and, when requested, ewald_neut, all sharing one alpha. An isolated
// system gets pair_ei with bare Coulomb instead. With tail corrections
// every pair term except ei is followed by its tailcorr part.
func Build(cfg *config.Config) (*ForceField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sys, err := buildSystem(cfg)
	if err != nil {
		return nil, err
	}
	nl, err := nlist.New(cfg.Pair.Rcut, cfg.Pair.Skin)
	if err != nil {
		return nil, err
	}

	var parts []Part
	if cfg.Ewald.Enabled {
		ewaldParts, err := buildEwald(cfg, sys)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ewaldParts...)
	}
	var tails []Part
	for i := range cfg.Pair.Terms {
		term := &cfg.Pair.Terms[i]
		form, err := buildForm(term, sys)
		if err != nil {
			return nil, fmt.Errorf("ff: term %d (%s): %w", i, term.Kind, err)
		}
		pot, err := newPairPot(form, cfg.Pair.Rcut, cfg.Pair.Smooth, cfg.Pair.Width)
		if err != nil {
			return nil, fmt.Errorf("ff: term %d (%s): %w", i, term.Kind, err)
		}
		pair := &Pair{Pot: pot}
		parts = append(parts, pair)
		if cfg.Pair.TailCorrections && term.Kind != config.KindEI {
			tail, err := NewTailCorr(pair)
			if err != nil {
				return nil, fmt.Errorf("ff: term %d (%s): %w", i, term.Kind, err)
			}
			tails = append(tails, tail)
		}
	}
	parts = append(parts, tails...)
	return New(sys, nl, parts...)
}

func buildSystem(cfg *config.Config) (*System, error) {
	natom := cfg.NAtom()
	sys := &System{
		Pos:     append([]float64(nil), cfg.System.Positions...),
		Charges: append([]float64(nil), cfg.ChargesOrZero()...),
		Masses:  append([]float64(nil), cfg.MassesOrUnit()...),
	}
	if cfg.Periodic() {
		var rvecs [9]float64
		copy(rvecs[:], cfg.System.Cell)
		c, err := cell.New(rvecs)
		if err != nil {
			return nil, err
		}
		sys.Cell = c
	}
	bonds, err := cfg.BondPairs()
	if err != nil {
		return nil, err
	}
	s := cfg.Scalings
	table, err := scaling.FromBonds(natom, bonds, s.Scale1, s.Scale2, s.Scale3)
	if err != nil {
		return nil, err
	}
	sys.Scalings = table
	return sys, nil
}

func buildEwald(cfg *config.Config, sys *System) ([]Part, error) {
	if sys.Cell == nil {
		ei, err := pairpot.NewEI(sys.Charges, 0)
		if err != nil {
			return nil, err
		}
		pot, err := newPairPot(ei, cfg.Pair.Rcut, cfg.Ewald.Smooth, cfg.Pair.Width)
		if err != nil {
			return nil, err
		}
		return []Part{&Pair{Pot: pot}}, nil
	}

	alpha := cfg.EwaldAlpha()
	ei, err := pairpot.NewEI(sys.Charges, alpha)
	if err != nil {
		return nil, err
	}
	pot, err := newPairPot(ei, cfg.Pair.Rcut, cfg.Ewald.Smooth, cfg.Pair.Width)
	if err != nil {
		return nil, err
	}

	var (
		gmax [3]int
		gcut float64
	)
	if len(cfg.Ewald.GMax) == 3 {
		copy(gmax[:], cfg.Ewald.GMax)
	} else {
		gcut = cfg.Ewald.GCutScale * alpha
		gmax = sys.Cell.GMax(gcut)
	}
	reci, err := NewEwaldReci(sys.NAtom(), alpha, gcut, gmax)
	if err != nil {
		return nil, err
	}

	parts := []Part{&Pair{Pot: pot}, reci, &EwaldCor{Alpha: alpha}}
	if cfg.Ewald.Neutralizing {
		parts = append(parts, &EwaldNeut{Alpha: alpha})
	}
	return parts, nil
}

func buildForm(term *config.TermConfig, sys *System) (pairpot.Form, error) {
	switch term.Kind {
	case config.KindLJ:
		return pairpot.NewLJ(term.Sigma, term.Epsilon)
	case config.KindMM3:
		return pairpot.NewMM3(term.Sigma, term.Epsilon)
	case config.KindGrimme:
		s6 := term.S6
		if s6 == 0 {
			s6 = pairpot.DefaultS6
		}
		return pairpot.NewGrimme(term.R0, term.C6, s6)
	case config.KindExpRep:
		ampMix, err := mixing(term.AmpMix, term.AmpCoef)
		if err != nil {
			return nil, err
		}
		bMix, err := mixing(term.BMix, term.BCoef)
		if err != nil {
			return nil, err
		}
		rep, err := pairpot.NewExpRep(term.Amp, ampMix, term.B, bMix)
		if err != nil {
			return nil, err
		}
		for _, x := range term.Cross {
			if err := rep.SetCross(x.Atoms[0], x.Atoms[1], x.Amp, x.B); err != nil {
				return nil, err
			}
		}
		return rep, nil
	case config.KindEI:
		charges := term.Charges
		if len(charges) == 0 {
			charges = sys.Charges
		}
		return pairpot.NewEI(charges, term.Alpha)
	}
	return nil, fmt.Errorf("ff: unknown pair kind %q", term.Kind)
}

func mixing(rule string, coeff float64) (pairpot.Mixing, error) {
	if rule == "" {
		return pairpot.Mixing{Rule: pairpot.Geometric, Coeff: coeff}, nil
	}
	r, err := pairpot.ParseMixRule(rule)
	if err != nil {
		return pairpot.Mixing{}, err
	}
	return pairpot.Mixing{Rule: r, Coeff: coeff}, nil
}

func newPairPot(form pairpot.Form, rcut float64, smooth bool, width float64) (*pairpot.PairPot, error) {
	if smooth {
		return pairpot.New(form, rcut, pairpot.WithSmoothing(width))
	}
	return pairpot.New(form, rcut)
}
