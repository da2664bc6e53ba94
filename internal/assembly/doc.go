// Package assembly builds the global matrices of a cable/strut network from
// its current geometry.
//
//   - equilibrium matrix A (3N x B): maps element tensions to nodal forces
//   - material stiffness A·diag(1/flexibility)·Aᵀ (3N x 3N)
//   - geometric stiffness, scattered from q·[[I,-I],[-I,I]] blocks (3N x 3N)
//
// Everything is recomputed from scratch for every state. An [Assembler] with
// more than one worker splits the element loops into chunks; each worker
// scatters into its own buffer and the buffers are summed afterwards, so the
// result does not depend on the worker count.
package assembly
