package viz

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Plane selects the two coordinates shown on screen.
type Plane int

const (
	PlaneXZ Plane = iota
	PlaneXY
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneYZ:
		return "YZ"
	default:
		return "XZ"
	}
}

func (p Plane) Next() Plane { return (p + 1) % 3 }

func ParsePlane(s string) (Plane, error) {
	switch s {
	case "xz", "XZ", "":
		return PlaneXZ, nil
	case "xy", "XY":
		return PlaneXY, nil
	case "yz", "YZ":
		return PlaneYZ, nil
	}
	return PlaneXZ, fmt.Errorf("unknown plane %q", s)
}

func (p Plane) coords(v r3.Vec) (float64, float64) {
	switch p {
	case PlaneXY:
		return v.X, v.Y
	case PlaneYZ:
		return v.Y, v.Z
	default:
		return v.X, v.Z
	}
}

// Viewport maps world points of a plane onto canvas dots, keeping the
// aspect ratio. Bounds are fixed at construction so motion stays visible.
type Viewport struct {
	plane            Plane
	minU, minV       float64
	scale            float64
	offsetX, offsetY float64
	dotsH            int
}

// Fit builds a viewport showing all points with a margin of dots.
func Fit(plane Plane, points []r3.Vec, dotsW, dotsH, margin int) Viewport {
	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		u, v := plane.coords(p)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}
	if len(points) == 0 {
		minU, maxU, minV, maxV = 0, 1, 0, 1
	}

	spanU, spanV := maxU-minU, maxV-minV
	availW, availH := float64(dotsW-1-2*margin), float64(dotsH-1-2*margin)
	scale := math.Inf(1)
	if spanU > 0 {
		scale = availW / spanU
	}
	if spanV > 0 {
		scale = math.Min(scale, availH/spanV)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	return Viewport{
		plane:   plane,
		minU:    minU,
		minV:    minV,
		scale:   scale,
		offsetX: float64(margin) + (availW-spanU*scale)/2,
		offsetY: float64(margin) + (availH-spanV*scale)/2,
		dotsH:   dotsH,
	}
}

// Project returns dot coordinates; the vertical axis points up.
func (vp Viewport) Project(p r3.Vec) (int, int) {
	u, v := vp.plane.coords(p)
	x := vp.offsetX + (u-vp.minU)*vp.scale
	y := vp.offsetY + (v-vp.minV)*vp.scale
	return int(math.Round(x)), vp.dotsH - 1 - int(math.Round(y))
}
