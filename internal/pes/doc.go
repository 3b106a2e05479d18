// Package pes holds the conventions shared by the non-bonded kernels.
//
// Positions and gradients are flat slices with three values per atom,
// atom-major. The virial tensor is a flat 9-value row-major 3x3 matrix.
// Kernels never overwrite these buffers, they only add to them:
//
//   - [AddPairGradient]: equal-and-opposite gradient contribution of a pair
//   - [AddPairVirial]: outer-product virial contribution of a pair
//   - [CheckBuffers]: shape validation run before any accumulation
//
// A nil gradient or virial slice means the caller did not request it.
//
// # Thread Safety
//
// Nothing in the kernels is synchronized. Two calls that share a gradient or
// virial buffer must not run concurrently.
package pes
