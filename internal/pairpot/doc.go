// Package pairpot evaluates short-range pair potentials over neighbor lists.
//
// A [PairPot] combines one radial [Form] with a cutoff and optional
// smoothing. The set of forms is closed:
//
//   - [LJ]: Lennard-Jones 12-6
//   - [MM3]: buffered exp-6 dispersion/repulsion of the MM3 force field
//   - [Grimme]: damped C6 dispersion
//   - [ExpRep]: exponential repulsion with selectable mixing rules
//   - [EI]: erfc-screened electrostatics, the real-space part of Ewald
//
// All forms but EI decay fast enough for [PairPot.TailCorrection] to
// integrate the interaction beyond the cutoff.
//
// # Example
//
//	lj, _ := pairpot.NewLJ(sigma, epsilon)
//	pp, _ := pairpot.New(lj, 9.0)
//	_ = pp.SetSmooth(true, 2.0)
//	e, err := pp.Compute(i, nl.Row(i), table.Row(i), gpos, vtens)
package pairpot
