package relax

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/tensegrity/internal/assembly"
)

// EventKind tells observers what produced a StepEvent.
type EventKind int

const (
	EventStep EventKind = iota
	EventReset
)

func (k EventKind) String() string {
	if k == EventReset {
		return "reset"
	}
	return "step"
}

// StepEvent is emitted after every time step; a step that crossed an
// energy peak emits EventReset with the restarted peak state instead.
type StepEvent struct {
	Kind          EventKind
	Step          int
	Resets        int
	Time          float64
	KineticEnergy float64
	ResidualNorm  float64
	State         *State
}

type Observer interface {
	OnStep(ev StepEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev StepEvent)

func (f ObserverFunc) OnStep(ev StepEvent) { f(ev) }

// Result is the outcome of a relaxation run.
type Result struct {
	Final               *State
	InEquilibrium       bool
	TimeSteps           int
	KineticEnergyResets int
	ResidualNorm        float64
	// Elapsed is the wall time spent inside Run.
	Elapsed time.Duration
}

type Solver struct {
	cfg       Config
	assembler *assembly.Assembler
	logger    *slog.Logger
	observers []Observer
}

type Option func(*Solver)

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Solver) { s.observers = append(s.observers, o) }
}

// New validates cfg and builds a Solver.
func New(cfg Config, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		cfg:       cfg,
		assembler: assembly.NewAssembler(cfg.Workers),
		logger:    slog.Default(),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Solver) Config() Config { return s.cfg }

func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run relaxes start until equilibrium or until an iteration cap is hit.
// On cancellation the last state is returned together with ctx.Err().
func (s *Solver) Run(ctx context.Context, start *Start) (*Result, error) {
	if start == nil || start.State == nil {
		return nil, fmt.Errorf("%w: nil start", ErrDimensionMismatch)
	}

	began := time.Now()
	r := &relaxation{
		cfg:       s.cfg,
		assembler: s.assembler,
		free:      start.State.Structure().FreeMask(),
	}

	cur := r.initial(start.State)
	res := &Result{}
	if !cur.IsFinite() {
		return s.finish(cur, res, began), &StepError{Step: 0, Wrapped: ErrNotFinite}
	}

	for {
		select {
		case <-ctx.Done():
			return s.finish(cur, res, began), ctx.Err()
		default:
		}

		if r.inEquilibrium(cur) {
			res.InEquilibrium = true
			break
		}
		if res.TimeSteps >= s.cfg.MaxTimeSteps || res.KineticEnergyResets >= s.cfg.MaxKineticEnergyResets {
			break
		}

		next := r.step(cur)
		res.TimeSteps++
		kind := EventStep

		if next.IsFinite() && next.KineticEnergy <= cur.KineticEnergy {
			next = r.peak(cur, next)
			res.KineticEnergyResets++
			kind = EventReset
			s.logger.Debug("kinetic energy peak",
				"step", res.TimeSteps,
				"resets", res.KineticEnergyResets,
				"residual", r.residualNorm(next))
		}

		if !next.IsFinite() {
			return s.finish(cur, res, began), &StepError{Step: res.TimeSteps, Time: next.Time, Wrapped: ErrNotFinite}
		}

		cur = next
		s.notify(StepEvent{
			Kind:          kind,
			Step:          res.TimeSteps,
			Resets:        res.KineticEnergyResets,
			Time:          cur.Time,
			KineticEnergy: cur.KineticEnergy,
			ResidualNorm:  r.residualNorm(cur),
			State:         cur,
		})
	}

	out := s.finish(cur, res, began)
	s.logger.Info("relaxation finished",
		"equilibrium", out.InEquilibrium,
		"steps", out.TimeSteps,
		"resets", out.KineticEnergyResets,
		"residual", out.ResidualNorm)
	return out, nil
}

func (s *Solver) finish(cur *State, res *Result, began time.Time) *Result {
	res.Final = cur
	res.Elapsed = time.Since(began)
	res.ResidualNorm = cur.ResidualNorm()
	return res
}

func (s *Solver) notify(ev StepEvent) {
	for _, o := range s.observers {
		o.OnStep(ev)
	}
}
