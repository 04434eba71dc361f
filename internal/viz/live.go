// Package viz provides a terminal live view of a running system, showing
// each state variable as a scrolling graph while the integration runs.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/causegen/internal/dynamo"
)

const (
	historyCapacity = 400
	stepsPerFrame   = 4
	graphWidth      = 72
	graphHeight     = 8
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 1)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives the live view: it owns the integration state and a
// bounded history per variable.
type Model struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	name       string
	labels     []string

	state   dynamo.State
	initial dynamo.State
	t, dt   float64

	history  [][]float64
	selected int // -1 shows every variable
	running  bool
	dead     bool
}

func NewModel(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt float64, name string, labels []string) Model {
	if len(labels) != sys.Dim() {
		labels = make([]string, sys.Dim())
		for i := range labels {
			labels[i] = fmt.Sprintf("v%d", i)
		}
	}
	history := make([][]float64, sys.Dim())
	for i := range history {
		history[i] = make([]float64, 0, historyCapacity)
	}
	return Model{
		sys:        sys,
		integrator: integ,
		name:       name,
		labels:     labels,
		state:      x0.Clone(),
		initial:    x0.Clone(),
		dt:         dt,
		history:    history,
		selected:   -1,
		running:    true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "a":
			m.selected = -1
		case "r":
			m.state = m.initial.Clone()
			m.t = 0
			m.dead = false
			for i := range m.history {
				m.history[i] = m.history[i][:0]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if c >= '1' && int(c-'1') < m.sys.Dim() {
					m.selected = int(c - '1')
				}
			}
		}
		return m, nil

	case TickMsg:
		if m.running && !m.dead {
			for i := 0; i < stepsPerFrame; i++ {
				m.state = m.integrator.Step(m.sys, m.state, m.t, m.dt)
				m.t += m.dt
			}
			if !m.state.IsValid() {
				m.dead = true
			} else {
				for i := range m.history {
					m.history[i] = append(m.history[i], m.state[i])
					if len(m.history[i]) > historyCapacity {
						m.history[i] = m.history[i][1:]
					}
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	status := "running"
	if m.dead {
		status = pausedStyle.Render("diverged (r to reset)")
	} else if !m.running {
		status = pausedStyle.Render("paused")
	}
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s  t=%.2f  %s", m.name, m.t, status)))
	sb.WriteString("\n\n")

	if m.selected >= 0 {
		sb.WriteString(m.renderVariable(m.selected, graphHeight*2))
	} else {
		for i := range m.history {
			sb.WriteString(m.renderVariable(i, graphHeight))
		}
	}

	sb.WriteString(helpStyle.Render("space pause · 1-6 focus · a all · r reset · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderVariable(i, height int) string {
	var sb strings.Builder
	val := 0.0
	if i < len(m.state) {
		val = m.state[i]
	}
	sb.WriteString(labelStyle.Render(fmt.Sprintf("%s = %+.4f", m.labels[i], val)))
	sb.WriteString("\n")

	if len(m.history[i]) > 1 {
		graph := asciigraph.Plot(m.history[i],
			asciigraph.Height(height),
			asciigraph.Width(graphWidth),
		)
		sb.WriteString(graphStyle.Render(graph))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Run starts the live view and blocks until the user quits.
func Run(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt float64, name string, labels []string) error {
	p := tea.NewProgram(NewModel(sys, integ, x0, dt, name, labels))
	_, err := p.Run()
	return err
}
