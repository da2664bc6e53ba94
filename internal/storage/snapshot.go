package storage

import (
	"github.com/san-kum/tensegrity/internal/relax"
	"github.com/san-kum/tensegrity/internal/structure"
)

// Snapshot is the serialisable form of a relaxation result.
type Snapshot struct {
	Name                string            `json:"name"`
	InEquilibrium       bool              `json:"in_equilibrium"`
	TimeSteps           int               `json:"time_steps"`
	KineticEnergyResets int               `json:"kinetic_energy_resets"`
	ResidualNorm        float64           `json:"residual_norm"`
	Nodes               []NodeSnapshot    `json:"nodes"`
	Elements            []ElementSnapshot `json:"elements"`
}

type NodeSnapshot struct {
	Index        int        `json:"index"`
	Position     [3]float64 `json:"position"`
	Displacement [3]float64 `json:"displacement"`
	Load         [3]float64 `json:"load"`
	Reaction     [3]float64 `json:"reaction"`
	Residual     [3]float64 `json:"residual"`
}

type ElementSnapshot struct {
	Index      int     `json:"index"`
	Ends       [2]int  `json:"ends"`
	Kind       string  `json:"kind"`
	Length     float64 `json:"length"`
	FreeLength float64 `json:"free_length"`
	Tension    float64 `json:"tension"`
}

func NewSnapshot(name string, res *relax.Result) *Snapshot {
	st := res.Final
	s := st.Structure()

	snap := &Snapshot{
		Name:                name,
		InEquilibrium:       res.InEquilibrium,
		TimeSteps:           res.TimeSteps,
		KineticEnergyResets: res.KineticEnergyResets,
		ResidualNorm:        res.ResidualNorm,
		Nodes:               make([]NodeSnapshot, s.NumNodes()),
		Elements:            make([]ElementSnapshot, s.NumElements()),
	}

	pick := func(v []float64, i int) [3]float64 {
		return [3]float64{v[structure.DOF(i, 0)], v[structure.DOF(i, 1)], v[structure.DOF(i, 2)]}
	}
	for i := range snap.Nodes {
		p := st.Position(i)
		snap.Nodes[i] = NodeSnapshot{
			Index:        i,
			Position:     [3]float64{p.X, p.Y, p.Z},
			Displacement: pick(st.Displacement, i),
			Load:         pick(st.Load, i),
			Reaction:     pick(st.Reaction, i),
			Residual:     pick(st.Residual, i),
		}
	}
	for e, el := range s.Elements {
		snap.Elements[e] = ElementSnapshot{
			Index:      e,
			Ends:       el.Ends,
			Kind:       el.Kind.String(),
			Length:     st.Length(e),
			FreeLength: st.FreeLength(e),
			Tension:    st.Tension[e],
		}
	}
	return snap
}
