// Package relax finds the static equilibrium of a cable/strut network with
// kinetically damped Dynamic Relaxation.
//
// The structure is treated as a fictitious dynamic system whose nodal masses
// are sized from the diagonal of the tangent stiffness. Velocities and
// displacements are integrated with a leapfrog scheme; whenever the total
// kinetic energy stops growing the motion has passed an energy peak, the
// peak position is extrapolated backwards, every velocity is reset and the
// integration restarts from there.
//
//   - [Config]: time step, mass sizing, iteration caps, tolerances
//   - [Start]: the state the relaxation starts from, including load and
//     free-length increments
//   - [Solver]: runs the relaxation and reports to [Observer]s
//   - [Result]: last state, equilibrium flag and step/reset counters
//   - [Sweep]: independent runs in parallel
//
// # Example
//
//	s, _ := structure.New(nodes, elements)
//	start, _ := relax.FromStructure(s, loads, shortenings)
//	solver, _ := relax.New(relax.DefaultConfig())
//	res, err := solver.Run(ctx, start)
//	if err == nil && !res.InEquilibrium {
//	    // iteration caps hit before the residual vanished
//	}
//
// Not reaching equilibrium is a normal outcome, not an error. Run only
// fails on cancellation or when the state stops being finite.
//
// # Thread Safety
//
// A Solver may run several starts concurrently; every step produces a fresh
// [State] and nothing is shared between runs except the observers, which
// must then be safe for concurrent use.
package relax
