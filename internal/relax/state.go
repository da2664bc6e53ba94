package relax

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/tensegrity/internal/structure"
)

// State is the relaxation snapshot at one pseudo-time. It extends the
// structural state with the fictitious dynamics of the free DOFs.
type State struct {
	*structure.State

	// Velocity is v(t-dt/2); right after a (re)start it already holds the
	// half-step velocity dt/2·R/m that the next move uses as is.
	Velocity  []float64
	Mass      []float64
	Resisting []float64
	Reaction  []float64
	Residual  []float64

	KineticEnergy float64
	Time          float64

	restart bool
}

func newState(base *structure.State) *State {
	n := base.Structure().NumDOFs()
	return &State{
		State:     base,
		Velocity:  make([]float64, n),
		Mass:      make([]float64, n),
		Resisting: make([]float64, n),
		Reaction:  make([]float64, n),
		Residual:  make([]float64, n),
	}
}

func (s *State) Clone() *State {
	return &State{
		State:         s.State.Clone(),
		Velocity:      cloneVec(s.Velocity),
		Mass:          cloneVec(s.Mass),
		Resisting:     cloneVec(s.Resisting),
		Reaction:      cloneVec(s.Reaction),
		Residual:      cloneVec(s.Residual),
		KineticEnergy: s.KineticEnergy,
		Time:          s.Time,
		restart:       s.restart,
	}
}

// Restarted reports whether the state was produced by a start or a
// kinetic-energy reset.
func (s *State) Restarted() bool { return s.restart }

// ResidualNorm is the Euclidean norm of the residual over free DOFs.
func (s *State) ResidualNorm() float64 {
	return maskedNorm(s.Residual, s.Structure().FreeMask())
}

// LoadNorm is the Euclidean norm of the applied load over free DOFs.
func (s *State) LoadNorm() float64 {
	return maskedNorm(s.Load, s.Structure().FreeMask())
}

func (s *State) IsFinite() bool {
	if !s.State.IsFinite() || math.IsNaN(s.KineticEnergy) || math.IsInf(s.KineticEnergy, 0) {
		return false
	}
	for _, v := range [][]float64{s.Velocity, s.Residual, s.Reaction} {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

func maskedNorm(v []float64, mask []bool) float64 {
	masked := make([]float64, 0, len(v))
	for i, x := range v {
		if mask[i] {
			masked = append(masked, x)
		}
	}
	if len(masked) == 0 {
		return 0
	}
	return floats.Norm(masked, 2)
}

func cloneVec(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
