package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tensegrity/internal/relax"
	"github.com/san-kum/tensegrity/internal/structure"
)

var ErrInvalidProblem = errors.New("config: invalid problem")

// Problem is the file form of an analysis: the network, the increments to
// apply and the solver settings.
type Problem struct {
	Name                 string            `yaml:"name"`
	Nodes                []NodeConfig      `yaml:"nodes"`
	Elements             []ElementConfig   `yaml:"elements"`
	Loads                []LoadConfig      `yaml:"loads,omitempty"`
	FreeLengthIncrements []IncrementConfig `yaml:"free_length_increments,omitempty"`
	Solver               SolverConfig      `yaml:"solver"`
}

type NodeConfig struct {
	Position [3]float64 `yaml:"position,flow"`
	Free     [3]bool    `yaml:"free,flow"`
}

type ElementConfig struct {
	Ends              [2]int         `yaml:"ends,flow"`
	Kind              structure.Kind `yaml:"kind"`
	Area              [2]float64     `yaml:"area,flow"`
	Modulus           [2]float64     `yaml:"modulus,flow"`
	InitialTension    float64        `yaml:"initial_tension,omitempty"`
	InitialFreeLength float64        `yaml:"initial_free_length,omitempty"`
}

type LoadConfig struct {
	Node  int        `yaml:"node"`
	Force [3]float64 `yaml:"force,flow"`
}

type IncrementConfig struct {
	Element int     `yaml:"element"`
	Delta   float64 `yaml:"delta"`
}

type SolverConfig struct {
	Dt                     float64 `yaml:"dt"`
	MassAmplification      float64 `yaml:"mass_amplification"`
	MinMass                float64 `yaml:"min_mass"`
	MaxTimeSteps           int     `yaml:"max_time_steps"`
	MaxKineticEnergyResets int     `yaml:"max_ke_resets"`
	AbsTolerance           float64 `yaml:"abs_tolerance"`
	RelTolerance           float64 `yaml:"rel_tolerance"`
	HugeMass               float64 `yaml:"huge_mass"`
	SlackFlexibility       float64 `yaml:"slack_flexibility"`
	Workers                int     `yaml:"workers"`
}

func DefaultSolver() SolverConfig {
	d := relax.DefaultConfig()
	return SolverConfig{
		Dt:                     d.Dt,
		MassAmplification:      d.MassAmplification,
		MinMass:                d.MinMass,
		MaxTimeSteps:           d.MaxTimeSteps,
		MaxKineticEnergyResets: d.MaxKineticEnergyResets,
		AbsTolerance:           d.AbsTolerance,
		RelTolerance:           d.RelTolerance,
		HugeMass:               d.HugeMass,
		SlackFlexibility:       d.SlackFlexibility,
		Workers:                d.Workers,
	}
}

// Relax converts the solver section. The result is validated by relax.New.
func (c SolverConfig) Relax() relax.Config {
	return relax.Config{
		Dt:                     c.Dt,
		MassAmplification:      c.MassAmplification,
		MinMass:                c.MinMass,
		HugeMass:               c.HugeMass,
		SlackFlexibility:       c.SlackFlexibility,
		MaxTimeSteps:           c.MaxTimeSteps,
		MaxKineticEnergyResets: c.MaxKineticEnergyResets,
		AbsTolerance:           c.AbsTolerance,
		RelTolerance:           c.RelTolerance,
		Workers:                c.Workers,
	}
}

// Load reads a problem file. Solver fields missing from the file keep
// their defaults.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Problem, error) {
	p := &Problem{Solver: DefaultSolver()}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	return p, nil
}

func Save(path string, p *Problem) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Structure builds and validates the network.
func (p *Problem) Structure() (*structure.Structure, error) {
	nodes := make([]structure.Node, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = structure.Node{
			Position: r3.Vec{X: n.Position[0], Y: n.Position[1], Z: n.Position[2]},
			Free:     n.Free,
		}
	}
	elements := make([]structure.Element, len(p.Elements))
	for i, e := range p.Elements {
		elements[i] = structure.Element{
			Ends:              e.Ends,
			Kind:              e.Kind,
			Area:              e.Area,
			Modulus:           e.Modulus,
			InitialTension:    e.InitialTension,
			InitialFreeLength: e.InitialFreeLength,
		}
	}
	return structure.New(nodes, elements)
}

// Increments returns the load and free-length increment vectors. Several
// entries for the same node or element add up.
func (p *Problem) Increments() ([]float64, []float64, error) {
	loads := make([]float64, 3*len(p.Nodes))
	for _, l := range p.Loads {
		if l.Node < 0 || l.Node >= len(p.Nodes) {
			return nil, nil, fmt.Errorf("%w: load on unknown node %d", ErrInvalidProblem, l.Node)
		}
		for axis, f := range l.Force {
			loads[structure.DOF(l.Node, axis)] += f
		}
	}

	deltas := make([]float64, len(p.Elements))
	for _, inc := range p.FreeLengthIncrements {
		if inc.Element < 0 || inc.Element >= len(p.Elements) {
			return nil, nil, fmt.Errorf("%w: increment on unknown element %d", ErrInvalidProblem, inc.Element)
		}
		deltas[inc.Element] += inc.Delta
	}
	return loads, deltas, nil
}

// Build returns the structure, the start state with all increments applied
// and the validated solver configuration.
func (p *Problem) Build() (*structure.Structure, *relax.Start, relax.Config, error) {
	cfg := p.Solver.Relax()
	if err := cfg.Validate(); err != nil {
		return nil, nil, cfg, err
	}
	s, err := p.Structure()
	if err != nil {
		return nil, nil, cfg, err
	}
	loads, deltas, err := p.Increments()
	if err != nil {
		return nil, nil, cfg, err
	}
	start, err := relax.FromStructure(s, loads, deltas)
	if err != nil {
		return nil, nil, cfg, err
	}
	return s, start, cfg, nil
}
