package viz

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tensegrity/internal/config"
	"github.com/san-kum/tensegrity/internal/relax"
)

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)

	c.Line(0, 0, 7, 0)
	c.Set(-1, 3)
	c.Set(100, 3)
	rows := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	require.Len(t, rows, 2)
	for _, r := range rows[0] {
		assert.Equal(t, rune(brailleBlank|0x1|0x8), r)
	}
	for _, r := range rows[1] {
		assert.Equal(t, rune(brailleBlank), r)
	}

	c.Mark(0, 0, 'o')
	assert.True(t, strings.HasPrefix(c.String(), "o"))
	c.Clear()
	assert.False(t, strings.ContainsRune(c.String(), 'o'))
}

func TestViewportKeepsPointsInside(t *testing.T) {
	points := []r3.Vec{{X: 0, Z: 1}, {X: 4, Z: 0}, {X: 2, Z: -0.1}}
	for _, plane := range []Plane{PlaneXZ, PlaneXY, PlaneYZ} {
		vp := Fit(plane, points, 120, 80, 4)
		for _, p := range points {
			x, y := vp.Project(p)
			assert.True(t, x >= 0 && x < 120, "%s x=%d", plane, x)
			assert.True(t, y >= 0 && y < 80, "%s y=%d", plane, y)
		}
	}

	vp := Fit(PlaneXZ, points, 120, 80, 4)
	_, top := vp.Project(r3.Vec{X: 0, Z: 1})
	_, bottom := vp.Project(r3.Vec{X: 2, Z: -0.1})
	assert.Less(t, top, bottom)
}

func TestParsePlane(t *testing.T) {
	p, err := ParsePlane("yz")
	require.NoError(t, err)
	assert.Equal(t, PlaneYZ, p)
	assert.Equal(t, PlaneXZ, p.Next())

	_, err = ParsePlane("zz")
	assert.Error(t, err)
}

func TestPlot(t *testing.T) {
	assert.Empty(t, Plot(nil, "x", 5, 20))
	assert.Contains(t, Plot([]float64{1, 3, 2}, "kinetic energy", 5, 20), "kinetic energy")
	assert.NotEmpty(t, PlotLog10([]float64{100, 1, 0}, "residual", 5, 20))

	ds := Downsample([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 4)
	assert.Equal(t, []float64{0, 3, 6, 9}, ds)
	assert.Len(t, Downsample([]float64{1, 2}, 4), 2)
}

func TestFeedThrottles(t *testing.T) {
	f := NewFeed(16, 5)
	p := config.GetPreset("two_cables")
	_, start, cfg, err := p.Build()
	require.NoError(t, err)

	solver, err := relax.New(cfg, relax.WithObserver(f))
	require.NoError(t, err)
	res, err := solver.Run(context.Background(), start)
	require.NoError(t, err)
	go f.Done(res, nil)

	frames := 0
	for {
		msg := f.Next()()
		if msg == nil {
			break
		}
		if fr, ok := msg.(FrameMsg); ok {
			frames++
			assert.True(t, fr.Reset || fr.Step%5 == 0)
			assert.Len(t, fr.Positions, 3)
		}
	}
	assert.Positive(t, frames)
	assert.LessOrEqual(t, frames, 16)
}

func TestModelUpdate(t *testing.T) {
	p := config.GetPreset("y_cables")
	s, start, cfg, err := p.Build()
	require.NoError(t, err)

	feed := NewFeed(1, 1)
	m := NewModel("y_cables", s, feed)
	assert.Contains(t, m.View(), "RELAXING")

	solver, err := relax.New(cfg)
	require.NoError(t, err)
	res, err := solver.Run(context.Background(), start)
	require.NoError(t, err)

	next, cmd := m.Update(FrameMsg{Step: 3, Positions: m.frame.Positions, Tensions: []float64{1, 2, 3}})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.Equal(t, 3, m.frame.Step)
	assert.Len(t, m.resHistory, 1)

	next, _ = m.Update(DoneMsg{Result: res})
	m = next.(Model)
	assert.True(t, m.Done())
	view := m.View()
	assert.Contains(t, view, "EQUILIBRIUM")
	assert.Contains(t, view, "Y_CABLES")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Equal(t, PlaneXY, next.(Model).plane)

	next, _ = m.Update(DoneMsg{Err: errors.New("diverged")})
	assert.Contains(t, next.(Model).View(), "diverged")
}

func TestModelWithPlane(t *testing.T) {
	p := config.GetPreset("two_cables")
	s, err := p.Structure()
	require.NoError(t, err)

	m := NewModel("two_cables", s, NewFeed(1, 1)).WithPlane(PlaneXY)
	assert.Equal(t, PlaneXY, m.plane)
	assert.Contains(t, m.View(), "XY")
}
