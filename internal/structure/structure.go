package structure

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const minElementLength = 1e-12

// Node is a structural joint. Free[axis] == false marks a support.
type Node struct {
	Position r3.Vec
	Free     [3]bool
}

// FreeDOFs counts the unsupported axes of the node.
func (n Node) FreeDOFs() int {
	c := 0
	for _, f := range n.Free {
		if f {
			c++
		}
	}
	return c
}

// Element is a two-node axial member. Area and Modulus are indexed by
// Compression and Tension.
type Element struct {
	Ends    [2]int
	Kind    Kind
	Area    [2]float64
	Modulus [2]float64

	// Optional prestress inputs. A zero InitialFreeLength is derived from
	// geometry and InitialTension.
	InitialTension    float64
	InitialFreeLength float64
}

// Structure is the immutable part of an analysis.
type Structure struct {
	Nodes    []Node
	Elements []Element

	initialFreeLength []float64
	initialTension    []float64
	initialLength     []float64
	free              []bool
}

// New validates the network and derives the initial free lengths.
func New(nodes []Node, elements []Element) (*Structure, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidTopology)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no elements", ErrInvalidTopology)
	}
	for i, n := range nodes {
		if !finiteVec(n.Position) {
			return nil, fmt.Errorf("%w: node %d has a non-finite position", ErrInvalidTopology, i)
		}
	}

	s := &Structure{
		Nodes:             append([]Node(nil), nodes...),
		Elements:          append([]Element(nil), elements...),
		initialFreeLength: make([]float64, len(elements)),
		initialTension:    make([]float64, len(elements)),
		initialLength:     make([]float64, len(elements)),
		free:              make([]bool, 3*len(nodes)),
	}
	for i, n := range nodes {
		for axis := 0; axis < 3; axis++ {
			s.free[DOF(i, axis)] = n.Free[axis]
		}
	}

	for i, el := range elements {
		if err := s.checkElement(i, el); err != nil {
			return nil, err
		}

		l := r3.Norm(r3.Sub(nodes[el.Ends[1]].Position, nodes[el.Ends[0]].Position))
		if l < minElementLength {
			return nil, fmt.Errorf("%w: element %d has zero length", ErrInvalidTopology, i)
		}
		s.initialLength[i] = l
		s.initialTension[i] = el.InitialTension

		switch {
		case el.InitialFreeLength > 0:
			s.initialFreeLength[i] = el.InitialFreeLength
		case el.InitialFreeLength < 0:
			return nil, fmt.Errorf("%w: element %d has a negative free length", ErrInvalidTopology, i)
		default:
			s.initialFreeLength[i] = backSolveFreeLength(l, el)
		}
	}

	return s, nil
}

func (s *Structure) checkElement(i int, el Element) error {
	n := len(s.Nodes)
	a, b := el.Ends[0], el.Ends[1]
	if a < 0 || a >= n || b < 0 || b >= n {
		return fmt.Errorf("%w: element %d references node outside [0,%d)", ErrInvalidTopology, i, n)
	}
	if a == b {
		return fmt.Errorf("%w: element %d connects node %d to itself", ErrInvalidTopology, i, a)
	}
	if !el.Kind.Valid() {
		return fmt.Errorf("%w: element %d: %d", ErrInvalidKind, i, int8(el.Kind))
	}
	for side := 0; side < 2; side++ {
		if !finiteNonNegative(el.Area[side]) || !finiteNonNegative(el.Modulus[side]) {
			return fmt.Errorf("%w: element %d", ErrInvalidMaterial, i)
		}
	}
	if math.IsNaN(el.InitialTension) || math.IsInf(el.InitialTension, 0) {
		return fmt.Errorf("%w: element %d has a non-finite initial tension", ErrInvalidMaterial, i)
	}
	return nil
}

// backSolveFreeLength finds L0 such that (L-L0)/flexibility(L0) equals the
// element's initial tension: L0 = L*EA/(EA+t).
func backSolveFreeLength(length float64, el Element) float64 {
	t := el.InitialTension
	if t == 0 {
		return length
	}
	a, e := ActiveProperties(t, el.Kind, el.Area, el.Modulus)
	ea := a * e
	if ea < stiffnessEpsilon || ea+t <= 0 {
		return length
	}
	return length * ea / (ea + t)
}

func (s *Structure) NumNodes() int    { return len(s.Nodes) }
func (s *Structure) NumElements() int { return len(s.Elements) }
func (s *Structure) NumDOFs() int     { return 3 * len(s.Nodes) }

// DOF returns the global index of a node axis.
func DOF(node, axis int) int { return 3*node + axis }

// IsFree reports whether global DOF i is unsupported.
func (s *Structure) IsFree(dof int) bool { return s.Nodes[dof/3].Free[dof%3] }

// FreeMask returns one flag per global DOF. The slice is shared and must
// not be modified.
func (s *Structure) FreeMask() []bool { return s.free }

func (s *Structure) InitialFreeLength(e int) float64 { return s.initialFreeLength[e] }
func (s *Structure) InitialTension(e int) float64    { return s.initialTension[e] }
func (s *Structure) InitialLength(e int) float64     { return s.initialLength[e] }

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
