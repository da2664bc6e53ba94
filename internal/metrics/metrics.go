package metrics

import (
	"math"

	"github.com/san-kum/tensegrity/internal/relax"
)

// Metric summarises a relaxation run from its step events. Every Metric is
// also a relax.Observer.
type Metric interface {
	relax.Observer
	Name() string
	Value() float64
	Reset()
}

// PeakKineticEnergy is the largest kinetic energy reached between resets.
type PeakKineticEnergy struct {
	name string
	peak float64
}

func NewPeakKineticEnergy() *PeakKineticEnergy {
	return &PeakKineticEnergy{name: "peak_kinetic_energy"}
}

func (p *PeakKineticEnergy) Name() string { return p.name }

func (p *PeakKineticEnergy) OnStep(ev relax.StepEvent) {
	p.peak = math.Max(p.peak, ev.KineticEnergy)
}

func (p *PeakKineticEnergy) Value() float64 { return p.peak }

func (p *PeakKineticEnergy) Reset() { p.peak = 0 }

// ResetRate is the fraction of time steps that ended on a kinetic-energy
// peak.
type ResetRate struct {
	name    string
	resets  int
	samples int
}

func NewResetRate() *ResetRate {
	return &ResetRate{name: "reset_rate"}
}

func (r *ResetRate) Name() string { return r.name }

func (r *ResetRate) OnStep(ev relax.StepEvent) {
	r.samples++
	if ev.Kind == relax.EventReset {
		r.resets++
	}
}

func (r *ResetRate) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.resets) / float64(r.samples)
}

func (r *ResetRate) Reset() {
	r.resets = 0
	r.samples = 0
}

// ResidualDecay is the ratio of the last observed residual norm to the
// first one. Values well below 1 mean the run is converging.
type ResidualDecay struct {
	name    string
	initial float64
	last    float64
	samples int
}

func NewResidualDecay() *ResidualDecay {
	return &ResidualDecay{name: "residual_decay"}
}

func (d *ResidualDecay) Name() string { return d.name }

func (d *ResidualDecay) OnStep(ev relax.StepEvent) {
	if d.samples == 0 {
		d.initial = ev.ResidualNorm
	}
	d.last = ev.ResidualNorm
	d.samples++
}

func (d *ResidualDecay) Value() float64 {
	if d.samples == 0 || d.initial == 0 {
		return 0
	}
	return d.last / d.initial
}

func (d *ResidualDecay) Reset() {
	d.initial = 0
	d.last = 0
	d.samples = 0
}

// Default returns the metrics reported after every solve.
func Default() []Metric {
	return []Metric{
		NewPeakKineticEnergy(),
		NewResetRate(),
		NewResidualDecay(),
	}
}
