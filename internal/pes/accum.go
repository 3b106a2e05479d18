package pes

import "fmt"

// CheckBuffers validates the optional gradient and virial buffers against natom.
func CheckBuffers(natom int, gpos, vtens []float64) error {
	if gpos != nil && len(gpos) != 3*natom {
		return fmt.Errorf("%w: gpos has %d values, want %d", ErrDimensionMismatch, len(gpos), 3*natom)
	}
	if vtens != nil && len(vtens) != 9 {
		return fmt.Errorf("%w: vtens has %d values, want 9", ErrDimensionMismatch, len(vtens))
	}
	return nil
}

// CheckAtoms validates a flat position slice against a per-atom slice.
func CheckAtoms(pos, perAtom []float64) (int, error) {
	if len(pos)%3 != 0 {
		return 0, fmt.Errorf("%w: %d position values is not a multiple of 3", ErrDimensionMismatch, len(pos))
	}
	natom := len(pos) / 3
	if len(perAtom) != natom {
		return 0, fmt.Errorf("%w: %d per-atom values for %d atoms", ErrDimensionMismatch, len(perAtom), natom)
	}
	return natom, nil
}

// AddPairGradient adds delta*g to the center atom and subtracts it from the
// other atom. delta is pos[center] - pos[other].
func AddPairGradient(gpos []float64, center, other int, delta *[3]float64, g float64) {
	for k := 0; k < 3; k++ {
		gpos[3*center+k] += delta[k] * g
		gpos[3*other+k] -= delta[k] * g
	}
}

// AddPairVirial adds the outer product delta*delta^T scaled by g.
func AddPairVirial(vtens []float64, delta *[3]float64, g float64) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			vtens[3*a+b] += delta[a] * delta[b] * g
		}
	}
}

// Zero clears an accumulator buffer. Nil is a no-op.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
