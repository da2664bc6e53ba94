package config

import (
	"math"
	"sort"

	"github.com/san-kum/tensegrity/internal/structure"
)

// 8 mm aluminium cable
const (
	presetArea    = math.Pi * 16e-6
	presetModulus = 7e10
)

var (
	fixed  = [3]bool{}
	freeXZ = [3]bool{true, false, true}
)

func presetCable(a, b int, compression float64) ElementConfig {
	return ElementConfig{
		Ends:    [2]int{a, b},
		Kind:    structure.Cable,
		Area:    [2]float64{presetArea, presetArea},
		Modulus: [2]float64{compression, presetModulus},
	}
}

func yCables(name string, apexZ, topCompression float64, inc []IncrementConfig) *Problem {
	return &Problem{
		Name: name,
		Nodes: []NodeConfig{
			{Position: [3]float64{2, 0, 1}, Free: fixed},
			{Position: [3]float64{0, 0, 0}, Free: fixed},
			{Position: [3]float64{4, 0, 0}, Free: fixed},
			{Position: [3]float64{2, 0, apexZ}, Free: freeXZ},
		},
		Elements: []ElementConfig{
			presetCable(3, 0, topCompression),
			presetCable(3, 1, presetModulus),
			presetCable(3, 2, presetModulus),
		},
		FreeLengthIncrements: inc,
		Solver:               DefaultSolver(),
	}
}

// Presets build fresh problems on every call so callers may modify them.
var Presets = map[string]func() *Problem{
	"two_cables": func() *Problem {
		return &Problem{
			Name: "two_cables",
			Nodes: []NodeConfig{
				{Position: [3]float64{0, 0, 0}, Free: fixed},
				{Position: [3]float64{2, 0, 0}, Free: freeXZ},
				{Position: [3]float64{4, 0, 0}, Free: fixed},
			},
			Elements: []ElementConfig{
				presetCable(0, 1, presetModulus),
				presetCable(1, 2, presetModulus),
			},
			FreeLengthIncrements: []IncrementConfig{{Element: 0, Delta: -0.007984}},
			Solver:               DefaultSolver(),
		}
	},
	"y_cables": func() *Problem {
		return yCables("y_cables", 0, presetModulus, []IncrementConfig{{Element: 0, Delta: -0.126775}})
	},
	"slack_cable": func() *Problem {
		return yCables("slack_cable", -0.1, 0, []IncrementConfig{
			{Element: 1, Delta: -0.004},
			{Element: 2, Delta: -0.004},
		})
	},
}

func GetPreset(name string) *Problem {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
