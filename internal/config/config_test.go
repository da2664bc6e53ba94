package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tensegrity/internal/relax"
	"github.com/san-kum/tensegrity/internal/structure"
)

const problemYAML = `
name: pulled
nodes:
  - {position: [0, 0, 0], free: [false, false, false]}
  - {position: [1, 0, 0], free: [true, false, false]}
elements:
  - {ends: [0, 1], kind: cable, area: [0, 1e-4], modulus: [0, 2e11]}
loads:
  - {node: 1, force: [600, 0, 0]}
  - {node: 1, force: [400, 0, 0]}
free_length_increments:
  - {element: 0, delta: -0.001}
solver:
  dt: 0.02
  workers: 2
`

func TestParseKeepsSolverDefaults(t *testing.T) {
	p, err := Parse([]byte(problemYAML))
	require.NoError(t, err)

	assert.Equal(t, "pulled", p.Name)
	assert.Equal(t, structure.Cable, p.Elements[0].Kind)
	assert.Equal(t, 0.02, p.Solver.Dt)
	assert.Equal(t, 2, p.Solver.Workers)
	assert.Equal(t, relax.DefaultMaxTimeSteps, p.Solver.MaxTimeSteps)
	assert.Equal(t, relax.DefaultHugeMass, p.Solver.HugeMass)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte(`elements: [{ends: [0, 1], kind: rope}]`))
	assert.ErrorIs(t, err, ErrInvalidProblem)
}

func TestBuild(t *testing.T) {
	p, err := Parse([]byte(problemYAML))
	require.NoError(t, err)

	s, start, cfg, err := p.Build()
	require.NoError(t, err)

	assert.Equal(t, 2, s.NumNodes())
	assert.Equal(t, 1000.0, start.State.Load[structure.DOF(1, 0)])
	assert.InDelta(t, 0.999, start.State.FreeLength(0), 1e-12)
	assert.Equal(t, 0.02, cfg.Dt)
}

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Problem)
		target error
	}{
		{"load on missing node", func(p *Problem) { p.Loads[0].Node = 7 }, ErrInvalidProblem},
		{"increment on missing element", func(p *Problem) { p.FreeLengthIncrements[0].Element = -1 }, ErrInvalidProblem},
		{"zero dt", func(p *Problem) { p.Solver.Dt = 0 }, relax.ErrInvalidConfig},
		{"element out of range", func(p *Problem) { p.Elements[0].Ends[1] = 5 }, structure.ErrInvalidTopology},
		{"free length vanishes", func(p *Problem) { p.FreeLengthIncrements[0].Delta = -1 }, relax.ErrNonPositiveFreeLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(problemYAML))
			require.NoError(t, err)
			tt.mutate(p)

			_, _, _, err = p.Build()
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slack.yaml")
	want := GetPreset("slack_cable")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"slack_cable", "two_cables", "y_cables"}, ListPresets())
	assert.Nil(t, GetPreset("nonexistent"))

	for _, name := range ListPresets() {
		p := GetPreset(name)
		require.NotNil(t, p, name)
		_, _, _, err := p.Build()
		assert.NoError(t, err, name)
	}

	// presets are independent copies
	a := GetPreset("two_cables")
	a.Solver.Dt = 1
	assert.Equal(t, relax.DefaultDt, GetPreset("two_cables").Solver.Dt)
}
