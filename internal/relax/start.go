package relax

import (
	"fmt"
	"math"

	"github.com/san-kum/tensegrity/internal/structure"
)

// Start is the state a relaxation departs from: a structural state with
// the load and free-length increments already applied.
type Start struct {
	State *structure.State
}

// NewStart applies the increments to a copy of base. Nil increments are
// treated as zero.
func NewStart(base *structure.State, loads, freeLengths []float64) (*Start, error) {
	s := base.Structure()
	if loads != nil && len(loads) != s.NumDOFs() {
		return nil, fmt.Errorf("%w: %d load components for %d DOFs", ErrDimensionMismatch, len(loads), s.NumDOFs())
	}
	if freeLengths != nil && len(freeLengths) != s.NumElements() {
		return nil, fmt.Errorf("%w: %d free-length increments for %d elements", ErrDimensionMismatch, len(freeLengths), s.NumElements())
	}

	st := base.Clone()
	for i, v := range loads {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: load component %d is not finite", ErrDimensionMismatch, i)
		}
		st.Load[i] += v
	}
	for e, v := range freeLengths {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: free-length increment %d is not finite", ErrDimensionMismatch, e)
		}
		st.FreeLengthVariation[e] += v
		if st.FreeLength(e) <= 0 {
			return nil, fmt.Errorf("%w: element %d", ErrNonPositiveFreeLength, e)
		}
	}

	return &Start{State: st}, nil
}

// FromStructure starts from the undeformed structure.
func FromStructure(s *structure.Structure, loads, freeLengths []float64) (*Start, error) {
	return NewStart(structure.NewState(s), loads, freeLengths)
}

// Continue starts a new relaxation from the final state of r.
func (r *Result) Continue(loads, freeLengths []float64) (*Start, error) {
	return NewStart(r.Final.State, loads, freeLengths)
}

// Split divides load and free-length increments into n equal stages for
// incremental loading.
func Split(loads, freeLengths []float64, n int) ([]float64, []float64) {
	if n < 1 {
		n = 1
	}
	scale := func(v []float64) []float64 {
		if v == nil {
			return nil
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = x / float64(n)
		}
		return out
	}
	return scale(loads), scale(freeLengths)
}
