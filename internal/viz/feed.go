package viz

import (
	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tensegrity/internal/relax"
)

// FrameMsg is a copy of one step event, detached from solver state.
type FrameMsg struct {
	Step          int
	Resets        int
	Time          float64
	KineticEnergy float64
	ResidualNorm  float64
	Reset         bool
	Positions     []r3.Vec
	Tensions      []float64
}

// DoneMsg ends a live run.
type DoneMsg struct {
	Result *relax.Result
	Err    error
}

// Feed forwards solver steps to a Bubble Tea program. It drops frames
// rather than slow the solver down when the UI falls behind. Every
// kinetic-energy reset is offered; plain steps only every nth.
type Feed struct {
	ch    chan tea.Msg
	every int
}

func NewFeed(buffer, every int) *Feed {
	if every < 1 {
		every = 1
	}
	return &Feed{ch: make(chan tea.Msg, buffer), every: every}
}

func (f *Feed) OnStep(ev relax.StepEvent) {
	if ev.Kind != relax.EventReset && ev.Step%f.every != 0 {
		return
	}
	select {
	case f.ch <- frameFrom(ev):
	default:
	}
}

// Done delivers the outcome and closes the feed. It blocks until the UI
// has room for it.
func (f *Feed) Done(res *relax.Result, err error) {
	f.ch <- DoneMsg{Result: res, Err: err}
	close(f.ch)
}

// Next waits for the next message of the feed.
func (f *Feed) Next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-f.ch
		if !ok {
			return nil
		}
		return msg
	}
}

func frameFrom(ev relax.StepEvent) FrameMsg {
	st := ev.State
	s := st.Structure()
	msg := FrameMsg{
		Step:          ev.Step,
		Resets:        ev.Resets,
		Time:          ev.Time,
		KineticEnergy: ev.KineticEnergy,
		ResidualNorm:  ev.ResidualNorm,
		Reset:         ev.Kind == relax.EventReset,
		Positions:     make([]r3.Vec, s.NumNodes()),
		Tensions:      make([]float64, len(st.Tension)),
	}
	for i := range msg.Positions {
		msg.Positions[i] = st.Position(i)
	}
	copy(msg.Tensions, st.Tension)
	return msg
}
