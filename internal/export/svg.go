package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tensegrity/internal/metrics"
	"github.com/san-kum/tensegrity/internal/storage"
	"github.com/san-kum/tensegrity/internal/viz"
)

const (
	background  = "#0a0a0a"
	tensionInk  = "#ff8866"
	compressInk = "#66aaff"
	slackInk    = "#666688"
	nodeInk     = "#ffffff"
	supportInk  = "#ffcc00"
)

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// StructureToSVG draws the deformed structure of snap projected on plane.
// Stroke width grows with the force magnitude; tension and compression
// use different colors.
func StructureToSVG(snap *storage.Snapshot, plane viz.Plane, width, height int) string {
	if snap == nil || len(snap.Nodes) == 0 {
		return ""
	}

	points := make([]r3.Vec, len(snap.Nodes))
	supports := make([]bool, len(snap.Nodes))
	for i, n := range snap.Nodes {
		points[i] = r3.Vec{X: n.Position[0], Y: n.Position[1], Z: n.Position[2]}
		// only supported DOFs carry a reaction
		supports[i] = n.Reaction != [3]float64{}
	}
	vp := viz.Fit(plane, points, width, height, 20)

	peak := 0.0
	for _, e := range snap.Elements {
		peak = math.Max(peak, math.Abs(e.Tension))
	}

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(`<g stroke-linecap="round">` + "\n")
	for _, e := range snap.Elements {
		x0, y0 := vp.Project(points[e.Ends[0]])
		x1, y1 := vp.Project(points[e.Ends[1]])
		ink, stroke := slackInk, 1.0
		if peak > 0 && math.Abs(e.Tension) > 1e-9*peak {
			stroke = 1 + 4*math.Abs(e.Tension)/peak
			ink = tensionInk
			if e.Tension < 0 {
				ink = compressInk
			}
		}
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%.1f"><title>%d %s %.3f</title></line>`+"\n",
			x0, y0, x1, y1, ink, stroke, e.Index, e.Kind, e.Tension)
	}
	sb.WriteString("</g>\n<g>\n")
	for i, p := range points {
		x, y := vp.Project(p)
		ink := nodeInk
		if supports[i] {
			ink = supportInk
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="4" fill="%s"/>`+"\n", x, y, ink)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// HistoryToSVG plots log10 of the residual norm over the recorded steps
// and marks kinetic-energy resets.
func HistoryToSVG(history []metrics.Sample, width, height int, strokeColor string) string {
	if len(history) < 2 {
		return ""
	}

	ys := make([]float64, len(history))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, h := range history {
		ys[i] = math.Log10(math.Max(h.ResidualNorm, 1e-16))
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	rangeX := float64(len(history) - 1)

	project := func(i int) (float64, float64) {
		return float64(i) / rangeX * float64(width), float64(height) - (ys[i]-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i := range history {
		x, y := project(i)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString(`"/>` + "\n")

	for i, h := range history {
		if !h.Reset {
			continue
		}
		x, y := project(i)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>`+"\n", x, y, supportInk)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
