// Package ewald implements the Ewald summation of point-charge electrostatics
// in a 3D periodic cell.
//
// The Coulomb energy is split into three pieces:
//
//   - [Reciprocal]: the smooth long-range part, summed over k-vectors
//   - [Correction]: the self energy of every charge plus the removal of the
//     erf-screened interaction for scaled or excluded pairs
//   - [Neutralizing]: the uniform background of a charged cell
//
// The short-range erfc part is a regular pair potential, see pairpot.EI.
// All pieces must use the same alpha.
//
// Every function accumulates into the gradient and virial buffers it is
// given and validates its inputs before touching them.
package ewald
