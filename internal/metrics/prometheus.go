package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/tensegrity/internal/relax"
)

// Recorder exports solver activity as Prometheus metrics. It observes
// steps like any other relax.Observer and is told about finished runs via
// ObserveResult.
type Recorder struct {
	registry *prometheus.Registry

	steps    prometheus.Counter
	resets   prometheus.Counter
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	residual prometheus.Histogram
}

// NewRecorder registers the solver metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "tensegrity_relax_steps_total",
			Help: "Time steps taken by dynamic relaxation",
		}),
		resets: factory.NewCounter(prometheus.CounterOpts{
			Name: "tensegrity_relax_kinetic_energy_resets_total",
			Help: "Kinetic energy peaks detected and restarted from",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tensegrity_relax_runs_total",
			Help: "Relaxation runs by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tensegrity_relax_duration_seconds",
			Help:    "Wall time of a relaxation run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		residual: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tensegrity_relax_final_residual",
			Help:    "Residual norm over free DOFs at the end of a run",
			Buckets: prometheus.ExponentialBuckets(1e-8, 10, 12),
		}),
	}
}

func (r *Recorder) OnStep(ev relax.StepEvent) {
	r.steps.Inc()
	if ev.Kind == relax.EventReset {
		r.resets.Inc()
	}
}

// ObserveResult records the outcome of a finished run. A nil result counts
// as a failed run.
func (r *Recorder) ObserveResult(res *relax.Result, elapsed time.Duration) {
	r.duration.Observe(elapsed.Seconds())
	switch {
	case res == nil:
		r.runs.WithLabelValues("error").Inc()
	case res.InEquilibrium:
		r.runs.WithLabelValues("equilibrium").Inc()
		r.residual.Observe(res.ResidualNorm)
	default:
		r.runs.WithLabelValues("capped").Inc()
		r.residual.Observe(res.ResidualNorm)
	}
}

func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
