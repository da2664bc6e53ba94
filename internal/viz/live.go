package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tensegrity/internal/relax"
	"github.com/san-kum/tensegrity/internal/structure"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	maxListed       = 8
	slackTension    = 1e-6
)

// Model follows a solver run fed through a Feed.
type Model struct {
	name     string
	s        *structure.Structure
	feed     *Feed
	canvas   *Canvas
	plane    Plane
	viewport Viewport

	frame      FrameMsg
	keHistory  []float64
	resHistory []float64

	done   bool
	result *relax.Result
	err    error
}

func NewModel(name string, s *structure.Structure, feed *Feed) Model {
	m := Model{
		name:       name,
		s:          s,
		feed:       feed,
		canvas:     NewCanvas(width, height),
		keHistory:  make([]float64, 0, historyCapacity),
		resHistory: make([]float64, 0, historyCapacity),
	}
	m.frame.Positions = make([]r3.Vec, s.NumNodes())
	for i, n := range s.Nodes {
		m.frame.Positions[i] = n.Position
	}
	m.frame.Tensions = make([]float64, s.NumElements())
	for e := range m.frame.Tensions {
		m.frame.Tensions[e] = s.InitialTension(e)
	}
	m.fit()
	return m
}

// WithPlane returns m projected onto plane.
func (m Model) WithPlane(plane Plane) Model {
	m.plane = plane
	m.fit()
	return m
}

func (m *Model) fit() {
	w, h := m.canvas.Dots()
	m.viewport = Fit(m.plane, m.frame.Positions, w, h, 4)
}

func (m Model) Init() tea.Cmd {
	return m.feed.Next()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			m.plane = m.plane.Next()
			m.fit()
		}
	case FrameMsg:
		m.frame = msg
		m.keHistory = appendCapped(m.keHistory, msg.KineticEnergy)
		m.resHistory = appendCapped(m.resHistory, msg.ResidualNorm)
		return m, m.feed.Next()
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if msg.Result != nil && msg.Result.Final != nil {
			m.frame = frameFrom(relax.StepEvent{
				Step:         msg.Result.TimeSteps,
				Resets:       msg.Result.KineticEnergyResets,
				Time:         msg.Result.Final.Time,
				ResidualNorm: msg.Result.ResidualNorm,
				State:        msg.Result.Final,
			})
		}
	}
	return m, nil
}

func appendCapped(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

func (m Model) Done() bool { return m.done }

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.frame.Step))
	row("Resets", fmt.Sprintf("%d", m.frame.Resets))
	row("Time", fmt.Sprintf("%.3f", m.frame.Time))
	row("KE", fmt.Sprintf("%.4e", m.frame.KineticEnergy))
	row("Residual", fmt.Sprintf("%.4e", m.frame.ResidualNorm))
	row("Plane", m.plane.String())

	if len(m.resHistory) > 1 {
		chart := PlotLog10(Downsample(m.resHistory, 30), "log10 residual", 4, 30)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\nFORCES\n")
	for e, t := range m.frame.Tensions {
		if e == maxListed {
			s.WriteString(labelStyle.Render(fmt.Sprintf("  +%d more", len(m.frame.Tensions)-maxListed)) + "\n")
			break
		}
		s.WriteString(forceStyle(t).Render(fmt.Sprintf("  %-3d %-6s %12.3f", e, m.s.Elements[e].Kind, t)) + "\n")
	}

	s.WriteString(helpStyle.Render("P:Plane Q:Quit"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("ERROR: " + m.err.Error())
	case !m.done:
		return runningStyle.Render("RELAXING")
	case m.result != nil && m.result.InEquilibrium:
		return doneStyle.Render("EQUILIBRIUM")
	default:
		return warnStyle.Render("STOPPED AT ITERATION CAP")
	}
}

func forceStyle(t float64) lipgloss.Style {
	switch {
	case math.Abs(t) < slackTension:
		return slackStyle
	case t > 0:
		return tensionStyle
	default:
		return compressionStyle
	}
}

// draw renders elements as lines (struts dashed) and nodes as marks.
func (m *Model) draw() {
	m.canvas.Clear()
	pos := m.frame.Positions
	for _, el := range m.s.Elements {
		x0, y0 := m.viewport.Project(pos[el.Ends[0]])
		x1, y1 := m.viewport.Project(pos[el.Ends[1]])
		if el.Kind == structure.Strut {
			m.canvas.Dashed(x0, y0, x1, y1)
		} else {
			m.canvas.Line(x0, y0, x1, y1)
		}
	}
	for i, n := range m.s.Nodes {
		x, y := m.viewport.Project(pos[i])
		if n.FreeDOFs() == 0 {
			m.canvas.Mark(x, y, '#')
		} else {
			m.canvas.Mark(x, y, 'o')
		}
	}
}
