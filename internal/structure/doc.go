// Package structure describes pin-jointed cable/strut networks.
//
// The package separates what never changes during an analysis from what
// changes at every relaxation step:
//
//   - [Node], [Element], [Structure]: immutable geometry, supports,
//     connectivity and material pairs
//   - [State]: per-iteration snapshot (displacements, loads, free-length
//     variations, tensions), always copied with [State.Clone]
//   - [ActiveProperties], [Flexibility]: pure tension-state switching
//
// # Tension-state switching
//
// Every element carries a (compression, tension) pair of areas and Young's
// moduli. The pair used at a step is picked from the sign of the tension
// found at the previous step; an element with exactly zero tension uses the
// pair matching its [Kind]. A cable with a zero compression modulus therefore
// goes slack as soon as it is computed in compression:
//
//	a, e := structure.ActiveProperties(prev, structure.Cable, el.Area, el.Modulus)
//	f := structure.Flexibility(freeLength, a, e, structure.DefaultSlackFlexibility)
//	t := (length - freeLength) / f
package structure
