package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbforce/internal/ff"
	"github.com/san-kum/nbforce/internal/md"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 600
	maxStepsPerTick = 64
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model runs velocity Verlet on a force field and renders the atoms
// projected on the xy plane next to the energy trace.
type Model struct {
	ff           *ff.ForceField
	integ        *md.Verlet
	name         string
	dt           float64
	step         int
	stepsPerTick int
	running      bool
	help         help.Model
	err          error

	initPos []float64
	initVel []float64
	scene   *scene

	e0          float64
	drift       float64
	potential   float64
	kinetic     float64
	totalHist   []float64
	tempHistory []float64
}

// NewModel prepares a live run starting from the force field's positions.
func NewModel(f *ff.ForceField, vel []float64, dt float64, name string) (Model, error) {
	if dt <= 0 {
		return Model{}, fmt.Errorf("%w: dt must be positive, got %f", md.ErrParameterBounds, dt)
	}
	m := Model{
		ff:           f,
		name:         name,
		dt:           dt,
		stepsPerTick: 1,
		running:      true,
		help:         help.New(),
		initPos:      append([]float64(nil), f.System.Pos...),
		initVel:      append([]float64(nil), vel...),
		scene:        newScene(f.System.Cell, f.System.Pos, canvasWidth, canvasHeight),
		totalHist:    make([]float64, 0, historyCapacity),
		tempHistory:  make([]float64, 0, historyCapacity),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the dynamics.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.running = !m.running
		case key.Matches(msg, keys.Restart):
			m.err = m.reset()
		case key.Matches(msg, keys.Faster):
			m.stepsPerTick = min(2*m.stepsPerTick, maxStepsPerTick)
		case key.Matches(msg, keys.Slower):
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerTick; i++ {
				if err := m.advance(); err != nil {
					m.err = err
					m.running = false
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// reset restores the initial configuration and velocities.
func (m *Model) reset() error {
	if err := m.ff.UpdatePos(m.initPos); err != nil {
		return err
	}
	integ, err := md.NewVerlet(m.ff, m.initVel)
	if err != nil {
		return err
	}
	m.integ = integ
	m.step = 0
	m.drift = 0
	m.totalHist = m.totalHist[:0]
	m.tempHistory = m.tempHistory[:0]
	if err := m.record(); err != nil {
		return err
	}
	m.e0 = m.potential + m.kinetic
	return nil
}

func (m *Model) advance() error {
	if err := m.integ.Step(m.dt); err != nil {
		return err
	}
	m.step++
	return m.record()
}

func (m *Model) record() error {
	epot, err := m.integ.Potential()
	if err != nil {
		return err
	}
	m.potential = epot
	m.kinetic = m.integ.Kinetic()
	total := epot + m.kinetic
	if m.step > 0 && m.e0 != 0 {
		m.drift = math.Max(m.drift, math.Abs(total-m.e0)/math.Abs(m.e0))
	}
	m.totalHist = appendBounded(m.totalHist, total)
	m.tempHistory = appendBounded(m.tempHistory, md.Temperature(m.kinetic, m.ff.NAtom()))
	return nil
}

func appendBounded(hist []float64, v float64) []float64 {
	if len(hist) == historyCapacity {
		copy(hist, hist[1:])
		hist = hist[:historyCapacity-1]
	}
	return append(hist, v)
}

// View renders the TUI.
func (m Model) View() string {
	m.scene.draw(m.integ.Positions())
	canvasView := canvasStyle.Render(m.scene.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("STOPPED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(runningStyle.Render("RUNNING") + fmt.Sprintf("  x%d\n\n", m.stepsPerTick))
	default:
		s.WriteString(pausedStyle.Render("PAUSED") + "\n\n")
	}
	if len(m.totalHist) > 1 {
		chart := asciigraph.Plot(m.totalHist, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.step))
	row("Time", fmt.Sprintf("%.3f", float64(m.step)*m.dt))
	row("Potential", fmt.Sprintf("%.8g", m.potential))
	row("Kinetic", fmt.Sprintf("%.8g", m.kinetic))
	row("Total", fmt.Sprintf("%.8g", m.potential+m.kinetic))
	row("Drift", fmt.Sprintf("%.3e", m.drift))
	s.WriteString(labelStyle.Render("Temperature") + Sparkline(m.tempHistory, 30) + "\n")

	s.WriteString("\nPARTS\n")
	for _, pe := range m.ff.Energies() {
		row("  "+pe.Name, fmt.Sprintf("%.8g", pe.Energy))
	}
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	return mainView + "\n" + helpStyle.Render(m.help.View(keys))
}

// Step returns the number of MD steps taken since the last reset.
func (m Model) Step() int { return m.step }

// Err returns the error that stopped the run, if any.
func (m Model) Err() error { return m.err }
