package relax_test

import (
	"math"

	"github.com/san-kum/tensegrity/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	area    = math.Pi * 16e-6 // 8 mm diameter
	modulus = 7e10

	fixed  = [3]bool{}
	freeXZ = [3]bool{true, false, true}
)

// cable builds a cable between a and b; compression is its compression
// modulus (0 for a tension-only cable).
func cable(a, b int, compression float64) structure.Element {
	return structure.Element{
		Ends:    [2]int{a, b},
		Kind:    structure.Cable,
		Area:    [2]float64{area, area},
		Modulus: [2]float64{compression, modulus},
	}
}

// twoCables: three colinear nodes 2 m apart, the middle one free in XZ.
func twoCables() *structure.Structure {
	s, err := structure.New(
		[]structure.Node{
			{Position: r3.Vec{}, Free: fixed},
			{Position: r3.Vec{X: 2}, Free: freeXZ},
			{Position: r3.Vec{X: 4}, Free: fixed},
		},
		[]structure.Element{cable(0, 1, modulus), cable(1, 2, modulus)},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// yCables: apex connected to a top anchor and two side anchors.
func yCables(apex r3.Vec, topCompression float64) *structure.Structure {
	s, err := structure.New(
		[]structure.Node{
			{Position: r3.Vec{X: 2, Z: 1}, Free: fixed},
			{Position: r3.Vec{}, Free: fixed},
			{Position: r3.Vec{X: 4}, Free: fixed},
			{Position: apex, Free: freeXZ},
		},
		[]structure.Element{
			cable(3, 0, topCompression),
			cable(3, 1, modulus),
			cable(3, 2, modulus),
		},
	)
	if err != nil {
		panic(err)
	}
	return s
}
