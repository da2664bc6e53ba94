package metrics

import (
	"sync"

	"github.com/san-kum/tensegrity/internal/relax"
)

// Sample is one recorded step of a relaxation run.
type Sample struct {
	Step          int     `json:"step"`
	Time          float64 `json:"time"`
	KineticEnergy float64 `json:"kinetic_energy"`
	ResidualNorm  float64 `json:"residual_norm"`
	Reset         bool    `json:"reset"`
}

// History records the convergence history of a run. Safe for concurrent
// use so a single History can be read while the solver is running.
type History struct {
	mu      sync.RWMutex
	samples []Sample
}

func NewHistory() *History {
	return &History{samples: make([]Sample, 0, 256)}
}

func (h *History) OnStep(ev relax.StepEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, Sample{
		Step:          ev.Step,
		Time:          ev.Time,
		KineticEnergy: ev.KineticEnergy,
		ResidualNorm:  ev.ResidualNorm,
		Reset:         ev.Kind == relax.EventReset,
	})
}

// Samples returns a copy of the recorded samples.
func (h *History) Samples() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// KineticEnergy and Residual return the series for plotting.
func (h *History) KineticEnergy() []float64 {
	return h.series(func(s Sample) float64 { return s.KineticEnergy })
}

func (h *History) Residual() []float64 {
	return h.series(func(s Sample) float64 { return s.ResidualNorm })
}

func (h *History) series(f func(Sample) float64) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]float64, len(h.samples))
	for i, s := range h.samples {
		out[i] = f(s)
	}
	return out
}

func (h *History) Reset() {
	h.mu.Lock()
	h.samples = h.samples[:0]
	h.mu.Unlock()
}
