package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

const logFloor = 1e-16

// Plot renders series as an ASCII line chart. Empty series give "".
func Plot(series []float64, caption string, height, width int) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotLog10 plots log10 of series, for residual norms spanning many
// decades. Non-positive values are clamped.
func PlotLog10(series []float64, caption string, height, width int) string {
	logs := make([]float64, len(series))
	for i, v := range series {
		logs[i] = math.Log10(math.Max(v, logFloor))
	}
	return Plot(logs, caption, height, width)
}

// Downsample keeps at most n points of series, always including the last.
func Downsample(series []float64, n int) []float64 {
	if n <= 0 || len(series) <= n {
		return series
	}
	out := make([]float64, n)
	step := float64(len(series)-1) / float64(n-1)
	for i := range out {
		out[i] = series[int(math.Round(float64(i)*step))]
	}
	return out
}
