package structure

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is the mutable part of an analysis at one relaxation step.
// Vectors indexed by DOF have length 3N, per-element vectors length B.
type State struct {
	s *Structure

	Displacement        []float64
	Load                []float64
	FreeLengthVariation []float64
	Tension             []float64
}

// NewState returns the undeformed, unloaded state carrying the initial
// tensions.
func NewState(s *Structure) *State {
	st := &State{
		s:                   s,
		Displacement:        make([]float64, s.NumDOFs()),
		Load:                make([]float64, s.NumDOFs()),
		FreeLengthVariation: make([]float64, s.NumElements()),
		Tension:             make([]float64, s.NumElements()),
	}
	copy(st.Tension, s.initialTension)
	return st
}

func (st *State) Structure() *Structure { return st.s }

func (st *State) Clone() *State {
	return &State{
		s:                   st.s,
		Displacement:        clone(st.Displacement),
		Load:                clone(st.Load),
		FreeLengthVariation: clone(st.FreeLengthVariation),
		Tension:             clone(st.Tension),
	}
}

// Position is the current position of node i.
func (st *State) Position(i int) r3.Vec {
	p := st.s.Nodes[i].Position
	return r3.Vec{
		X: p.X + st.Displacement[3*i],
		Y: p.Y + st.Displacement[3*i+1],
		Z: p.Z + st.Displacement[3*i+2],
	}
}

// Positions flattens every node position into a 3N vector.
func (st *State) Positions() []float64 {
	out := make([]float64, st.s.NumDOFs())
	for i := range st.s.Nodes {
		p := st.Position(i)
		out[3*i], out[3*i+1], out[3*i+2] = p.X, p.Y, p.Z
	}
	return out
}

// Vector runs from the first end of element e to the second.
func (st *State) Vector(e int) r3.Vec {
	ends := st.s.Elements[e].Ends
	return r3.Sub(st.Position(ends[1]), st.Position(ends[0]))
}

func (st *State) Length(e int) float64 { return r3.Norm(st.Vector(e)) }

// Cosines are the direction cosines of element e, first end to second.
func (st *State) Cosines(e int) r3.Vec {
	v := st.Vector(e)
	l := r3.Norm(v)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, v)
}

func (st *State) FreeLength(e int) float64 {
	return st.s.initialFreeLength[e] + st.FreeLengthVariation[e]
}

// Flexibility of element e using the properties selected by its current
// (previous-step) tension.
func (st *State) Flexibility(e int, slack float64) float64 {
	el := st.s.Elements[e]
	a, mod := ActiveProperties(st.Tension[e], el.Kind, el.Area, el.Modulus)
	return Flexibility(st.FreeLength(e), a, mod, slack)
}

// UpdateTensions recomputes every tension from the current geometry. The
// flexibilities are evaluated with the tensions held before the update and
// are returned for stiffness assembly.
func (st *State) UpdateTensions(slack float64) []float64 {
	flex := make([]float64, st.s.NumElements())
	for e := range st.s.Elements {
		flex[e] = st.Flexibility(e, slack)
	}
	for e := range st.s.Elements {
		st.Tension[e] = (st.Length(e) - st.FreeLength(e)) / flex[e]
	}
	return flex
}

// ForceDensities returns tension/length per element.
func (st *State) ForceDensities() []float64 {
	q := make([]float64, st.s.NumElements())
	for e := range st.s.Elements {
		if l := st.Length(e); l > 0 {
			q[e] = st.Tension[e] / l
		}
	}
	return q
}

// IsFinite reports whether every vector of the state is free of NaN/Inf.
func (st *State) IsFinite() bool {
	for _, v := range [][]float64{st.Displacement, st.Load, st.FreeLengthVariation, st.Tension} {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
