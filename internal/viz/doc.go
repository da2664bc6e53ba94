// Package viz draws relaxation runs in the terminal.
//
// [Plot] and [PlotLog10] render convergence histories with asciigraph.
// [Model] is a Bubble Tea program that follows a running solver through a
// [Feed], drawing the structure on a Braille [Canvas] next to live
// kinetic energy, residual and element forces.
//
// # Key Bindings
//
//	P - cycle the projection plane (XZ, XY, YZ)
//	Q - quit
package viz
