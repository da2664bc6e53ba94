package assembly

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/tensegrity/internal/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const ea = 5e-5 * 7e10

func cable(a, b int) structure.Element {
	return structure.Element{
		Ends:    [2]int{a, b},
		Kind:    structure.Cable,
		Area:    [2]float64{0, 5e-5},
		Modulus: [2]float64{0, 7e10},
	}
}

func yStructure(t testing.TB) *structure.State {
	t.Helper()
	s, err := structure.New(
		[]structure.Node{
			{Position: r3.Vec{X: 2, Z: 1}},
			{Position: r3.Vec{}},
			{Position: r3.Vec{X: 4}},
			{Position: r3.Vec{X: 2}, Free: [3]bool{true, false, true}},
		},
		[]structure.Element{cable(3, 0), cable(3, 1), cable(3, 2)},
	)
	require.NoError(t, err)
	return structure.NewState(s)
}

func TestEquilibriumMatrix(t *testing.T) {
	st := yStructure(t)
	eq := NewAssembler(1).Equilibrium(st)

	r, c := eq.Dims()
	assert.Equal(t, 12, r)
	assert.Equal(t, 3, c)

	// element 0 runs apex -> top: +z at the top node, -z at the apex
	assert.Equal(t, -1.0, eq.At(structure.DOF(3, 2), 0))
	assert.Equal(t, 1.0, eq.At(structure.DOF(0, 2), 0))
	// element 1 runs apex -> origin
	assert.Equal(t, 1.0, eq.At(structure.DOF(3, 0), 1))
	assert.Equal(t, -1.0, eq.At(structure.DOF(1, 0), 1))

	// unit tensions pull the apex towards every anchor
	sys := &System{Equilibrium: eq}
	f := sys.Resisting([]float64{1, 1, 1})
	assert.InDelta(t, 0, f[structure.DOF(3, 0)], 1e-15)
	assert.InDelta(t, -1, f[structure.DOF(3, 2)], 1e-15)
	assert.InDelta(t, 1, f[structure.DOF(0, 2)], 1e-15)
}

func TestMaterialStiffness(t *testing.T) {
	st := yStructure(t)
	a := NewAssembler(1)
	flex := st.UpdateTensions(structure.DefaultSlackFlexibility)
	sys := a.Assemble(st, flex)

	x := structure.DOF(3, 0)
	z := structure.DOF(3, 2)
	assert.InDelta(t, 2*ea/2, sys.Material.At(x, x), 1e-6)
	assert.InDelta(t, ea/1, sys.Material.At(z, z), 1e-6)
	assert.InDelta(t, 0, sys.Material.At(x, z), 1e-9)
	assert.InDelta(t, -ea/2, sys.Material.At(x, structure.DOF(1, 0)), 1e-6)

	// same thing written out as A·diag(1/f)·Aᵀ
	var scaled, want mat.Dense
	scaled.Mul(sys.Equilibrium, mat.NewDiagDense(3, []float64{1 / flex[0], 1 / flex[1], 1 / flex[2]}))
	want.Mul(&scaled, sys.Equilibrium.T())
	assert.True(t, mat.EqualApprox(&want, sys.Material, 1e-6))
}

func TestGeometricStiffness(t *testing.T) {
	st := yStructure(t)
	st.Tension[0], st.Tension[1], st.Tension[2] = 10, 20, 20

	k := NewAssembler(1).GeometricStiffness(st, st.ForceDensities())

	z := structure.DOF(3, 2)
	// q = 10/1 + 20/2 + 20/2
	assert.InDelta(t, 30, k.At(z, z), 1e-12)
	assert.InDelta(t, -10, k.At(z, structure.DOF(0, 2)), 1e-12)
	assert.InDelta(t, 10, k.At(structure.DOF(0, 2), structure.DOF(0, 2)), 1e-12)
	assert.Zero(t, k.At(z, structure.DOF(3, 0)))

	sys := &System{Material: mat.NewSymDense(12, nil), Geometric: k}
	assert.InDelta(t, 30, sys.StiffnessDiagonal()[z], 1e-12)
}

func randomNetwork(t testing.TB, nodes, elements int) *structure.State {
	t.Helper()
	rng := rand.New(rand.NewSource(7))

	ns := make([]structure.Node, nodes)
	for i := range ns {
		ns[i] = structure.Node{
			Position: r3.Vec{X: rng.Float64() * 10, Y: rng.Float64() * 10, Z: rng.Float64() * 10},
			Free:     [3]bool{true, true, i%5 != 0},
		}
	}
	es := make([]structure.Element, elements)
	for e := range es {
		a := rng.Intn(nodes)
		b := (a + 1 + rng.Intn(nodes-1)) % nodes
		es[e] = cable(a, b)
		if e%3 == 0 {
			es[e].Kind = structure.Strut
			es[e].Area[structure.Compression] = 1e-3
			es[e].Modulus[structure.Compression] = 2e11
		}
	}

	s, err := structure.New(ns, es)
	require.NoError(t, err)
	st := structure.NewState(s)
	for e := range st.Tension {
		st.Tension[e] = rng.Float64()*2000 - 1000
	}
	return st
}

func TestParallelMatchesSerial(t *testing.T) {
	st := randomNetwork(t, 40, 300)
	flex := make([]float64, st.Structure().NumElements())
	for e := range flex {
		flex[e] = st.Flexibility(e, structure.DefaultSlackFlexibility)
	}

	serial := NewAssembler(1).Assemble(st, flex)

	par := NewAssembler(4)
	par.minChunk = 16
	parallel := par.Assemble(st, flex)

	assert.True(t, mat.Equal(serial.Equilibrium, parallel.Equilibrium))
	assert.True(t, mat.EqualApprox(serial.Geometric, parallel.Geometric, 1e-9))
	assert.True(t, mat.EqualApprox(serial.Material, parallel.Material, 1e-6))
}

func TestStiffnessIsSymmetric(t *testing.T) {
	st := randomNetwork(t, 12, 40)
	flex := st.UpdateTensions(structure.DefaultSlackFlexibility)
	sys := NewAssembler(2).Assemble(st, flex)

	n := sys.Material.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.Equal(t, sys.Geometric.At(i, j), sys.Geometric.At(j, i))
			require.False(t, math.IsNaN(sys.Material.At(i, j)))
		}
	}
}

func TestParallelForCoversRange(t *testing.T) {
	seen := make([]int, 1000)
	used := parallelFor(len(seen), 4, 10, func(_, start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})

	assert.Equal(t, 4, used)
	for i, c := range seen {
		require.Equal(t, 1, c, "index %d", i)
	}

	assert.Equal(t, 1, parallelFor(5, 4, 10, func(int, int, int) {}))
}

func BenchmarkAssembleSerial(b *testing.B) {
	st := randomNetwork(b, 60, 400)
	flex := st.UpdateTensions(structure.DefaultSlackFlexibility)
	a := NewAssembler(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Assemble(st, flex)
	}
}

func BenchmarkAssembleParallel(b *testing.B) {
	st := randomNetwork(b, 60, 400)
	flex := st.UpdateTensions(structure.DefaultSlackFlexibility)
	a := NewAssembler(4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Assemble(st, flex)
	}
}
