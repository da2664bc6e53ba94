package assembly

import (
	"math"

	"github.com/san-kum/tensegrity/internal/structure"
	"gonum.org/v1/gonum/mat"
)

const defaultMinChunk = 64

// System holds the matrices assembled for one state.
type System struct {
	Equilibrium  *mat.Dense
	Material     *mat.SymDense
	Geometric    *mat.SymDense
	Flexibility  []float64
	ForceDensity []float64
}

// Assembler builds Systems, optionally spreading element loops over
// several goroutines.
type Assembler struct {
	workers  int
	minChunk int
}

func NewAssembler(workers int) *Assembler {
	if workers < 1 {
		workers = 1
	}
	return &Assembler{workers: workers, minChunk: defaultMinChunk}
}

func (a *Assembler) Workers() int { return a.workers }

// Assemble builds A, the material stiffness from flex and the geometric
// stiffness from the current tensions of st.
func (a *Assembler) Assemble(st *structure.State, flex []float64) *System {
	eq := a.Equilibrium(st)
	q := st.ForceDensities()
	return &System{
		Equilibrium:  eq,
		Material:     MaterialStiffness(eq, flex),
		Geometric:    a.GeometricStiffness(st, q),
		Flexibility:  flex,
		ForceDensity: q,
	}
}

// Equilibrium builds A. Column e holds -c on the first end's rows and +c on
// the second end's rows, c being the unit vector from the first end to the
// second, so A·t is the resisting force of tensions t.
func (a *Assembler) Equilibrium(st *structure.State) *mat.Dense {
	s := st.Structure()
	eq := mat.NewDense(s.NumDOFs(), s.NumElements(), nil)

	// every element owns its column: no scratch needed
	parallelFor(s.NumElements(), a.workers, a.minChunk, func(_, start, end int) {
		for e := start; e < end; e++ {
			c := st.Cosines(e)
			cos := [3]float64{c.X, c.Y, c.Z}
			ends := s.Elements[e].Ends
			for axis := 0; axis < 3; axis++ {
				eq.Set(structure.DOF(ends[0], axis), e, -cos[axis])
				eq.Set(structure.DOF(ends[1], axis), e, cos[axis])
			}
		}
	})

	return eq
}

// MaterialStiffness computes A·diag(1/flex)·Aᵀ.
func MaterialStiffness(eq *mat.Dense, flex []float64) *mat.SymDense {
	rows, cols := eq.Dims()
	root := make([]float64, cols)
	for e, f := range flex {
		root[e] = math.Sqrt(1 / f)
	}

	var scaled mat.Dense
	scaled.Mul(eq, mat.NewDiagDense(cols, root))

	k := mat.NewSymDense(rows, nil)
	k.SymOuterK(1, &scaled)
	return k
}

// GeometricStiffness scatters q[e]·[[I,-I],[-I,I]] for every element.
func (a *Assembler) GeometricStiffness(st *structure.State, q []float64) *mat.SymDense {
	s := st.Structure()
	n := s.NumDOFs()

	scratch := make([]*mat.SymDense, a.workers)
	used := parallelFor(s.NumElements(), a.workers, a.minChunk, func(w, start, end int) {
		local := mat.NewSymDense(n, nil)
		for e := start; e < end; e++ {
			scatterGeometric(local, s.Elements[e].Ends, q[e])
		}
		scratch[w] = local
	})

	k := mat.NewSymDense(n, nil)
	for w := 0; w < used; w++ {
		if scratch[w] != nil {
			k.AddSym(k, scratch[w])
		}
	}
	return k
}

func scatterGeometric(k *mat.SymDense, ends [2]int, q float64) {
	for axis := 0; axis < 3; axis++ {
		i := structure.DOF(ends[0], axis)
		j := structure.DOF(ends[1], axis)
		k.SetSym(i, i, k.At(i, i)+q)
		k.SetSym(j, j, k.At(j, j)+q)
		k.SetSym(i, j, k.At(i, j)-q)
	}
}

// Resisting returns A·t.
func (sys *System) Resisting(tension []float64) []float64 {
	rows, _ := sys.Equilibrium.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(sys.Equilibrium, mat.NewVecDense(len(tension), append([]float64(nil), tension...)))
	return out.RawVector().Data
}

// StiffnessDiagonal returns diag(material) + diag(geometric).
func (sys *System) StiffnessDiagonal() []float64 {
	n := sys.Material.SymmetricDim()
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = sys.Material.At(i, i) + sys.Geometric.At(i, i)
	}
	return d
}
