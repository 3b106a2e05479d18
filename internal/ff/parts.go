package ff

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/ewald"
	"github.com/san-kum/nbforce/internal/nlist"
	"github.com/san-kum/nbforce/internal/pairpot"
)

// EwaldReci is the reciprocal-space Ewald sum. With GCut > 0 the k-space
// truncation follows the cell on every call.
type EwaldReci struct {
	GCut float64
	reci *ewald.ReciprocalPart
}

func NewEwaldReci(natom int, alpha, gcut float64, gmax [3]int) (*EwaldReci, error) {
	reci, err := ewald.NewReciprocalPart(natom, alpha, gmax)
	if err != nil {
		return nil, err
	}
	return &EwaldReci{GCut: gcut, reci: reci}, nil
}

func (p *EwaldReci) Name() string   { return "ewald_reci" }
func (p *EwaldReci) Alpha() float64 { return p.reci.Alpha }
func (p *EwaldReci) GMax() [3]int   { return p.reci.GMax }

func (p *EwaldReci) Compute(sys *System, _ *nlist.List, gpos, vtens []float64) (float64, error) {
	if sys.Cell == nil {
		return 0, ErrNoCell
	}
	if p.GCut > 0 {
		p.reci.GMax = sys.Cell.GMax(p.GCut)
	}
	return p.reci.Compute(sys.Pos, sys.Charges, &sys.Cell.Gvecs, sys.Cell.Volume, gpos, vtens)
}

// EwaldCor holds the self energies and removes the screened interaction of
// scaled pairs.
type EwaldCor struct {
	Alpha float64
}

func (p *EwaldCor) Name() string { return "ewald_cor" }

func (p *EwaldCor) Compute(sys *System, _ *nlist.List, gpos, vtens []float64) (float64, error) {
	if sys.Cell == nil {
		return 0, ErrNoCell
	}
	total := 0.0
	for i := 0; i < sys.NAtom(); i++ {
		e, err := ewald.Correction(sys.Pos, i, sys.Charges, sys.Cell, p.Alpha, sys.Scalings.Row(i), gpos, vtens)
		if err != nil {
			return 0, err
		}
		total += e
	}
	return total, nil
}

// EwaldNeut is the uniform background of a charged cell.
type EwaldNeut struct {
	Alpha float64
}

func (p *EwaldNeut) Name() string { return "ewald_neut" }

func (p *EwaldNeut) Compute(sys *System, _ *nlist.List, _, vtens []float64) (float64, error) {
	if sys.Cell == nil {
		return 0, ErrNoCell
	}
	return ewald.Neutralizing(sys.Charges, sys.Cell.Volume, p.Alpha, vtens)
}

// Pair applies a pair potential over the neighbor list.
type Pair struct {
	Pot *pairpot.PairPot
}

func (p *Pair) Name() string { return "pair_" + p.Pot.Name() }

func (p *Pair) Compute(sys *System, nl *nlist.List, gpos, vtens []float64) (float64, error) {
	if nl == nil {
		return 0, fmt.Errorf("ff: %s needs a neighbor list", p.Name())
	}
	if nl.Rcut < p.Pot.Rcut() {
		return 0, fmt.Errorf("ff: neighbor list cutoff %g below %s cutoff %g", nl.Rcut, p.Name(), p.Pot.Rcut())
	}
	total := 0.0
	for i := 0; i < sys.NAtom(); i++ {
		e, err := p.Pot.Compute(i, nl.Row(i), sys.Scalings.Row(i), gpos, vtens)
		if err != nil {
			return 0, err
		}
		total += e
	}
	return total, nil
}

// TailCorr is the mean-field energy and virial of a pair part beyond its
// cutoff in a 3D periodic system.
type TailCorr struct {
	pair  string
	ecorr float64
	wcorr float64
}

// NewTailCorr integrates the tail of p once. The result only scales with
// the cell volume afterwards.
func NewTailCorr(p *Pair) (*TailCorr, error) {
	ecorr, wcorr, err := p.Pot.TailCorrection()
	if err != nil {
		return nil, err
	}
	return &TailCorr{pair: p.Name(), ecorr: ecorr, wcorr: wcorr}, nil
}

func (p *TailCorr) Name() string { return "tailcorr_" + p.pair }

// Sums returns the pair sums of the tail integrals, see
// pairpot.PairPot.TailCorrection.
func (p *TailCorr) Sums() (ecorr, wcorr float64) { return p.ecorr, p.wcorr }

func (p *TailCorr) Compute(sys *System, _ *nlist.List, _, vtens []float64) (float64, error) {
	if sys.Cell == nil {
		return 0, ErrNoCell
	}
	v := sys.Cell.Volume
	if vtens != nil {
		w := 2 * math.Pi * p.wcorr / v
		vtens[0] += w
		vtens[4] += w
		vtens[8] += w
	}
	return 2 * math.Pi * p.ecorr / v, nil
}
