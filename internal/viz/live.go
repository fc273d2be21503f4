package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Lovestruckgg7/AdaptiveOpticsDMSimulator/internal/calib"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	stopStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).MarginTop(1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// StepMsg carries one completed calibration step into the view.
type StepMsg calib.State

// DoneMsg signals the end of the run.
type DoneMsg struct {
	Result *calib.Result
	Err    error
}

// Model is the live calibration view.
type Model struct {
	totalSteps int
	last       calib.State
	errHistory []float64
	done       bool
	stop       calib.StopReason
	err        error
}

func NewModel(totalSteps int) Model {
	return Model{
		totalSteps: totalSteps,
		errHistory: make([]float64, 0, totalSteps),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		}
	case StepMsg:
		m.last = calib.State(msg)
		m.errHistory = append(m.errHistory, m.last.ErrorNorm())
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		if msg.Result != nil {
			m.stop = msg.Result.Stop
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("adaptive optics calibration"))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("step", fmt.Sprintf("%d / %d", m.last.Step, m.totalSteps))
	row("wavefront", fmt.Sprintf("(%.5f, %.5f, %.5f)", m.last.Wavefront.X, m.last.Wavefront.Y, m.last.Wavefront.Z))
	row("error norm", fmt.Sprintf("%.6f", m.last.ErrorNorm()))
	row("max adjustment", fmt.Sprintf("%.6f", m.last.MaxAdjustment))

	if len(m.errHistory) >= 2 {
		graph := asciigraph.Plot(m.errHistory,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("error norm per step"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString(stopStyle.Render(fmt.Sprintf("failed: %v", m.err)))
		} else {
			b.WriteString(stopStyle.Render(fmt.Sprintf("stopped: %s", m.stop)))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// ObserverFunc adapts a function to the calib.Observer interface.
type ObserverFunc func(calib.State)

func (f ObserverFunc) OnStep(s calib.State) { f(s) }

// RunLive executes run in the background and renders its steps live. run
// receives an observer that must be attached to the calibration loop.
func RunLive(totalSteps int, run func(obs calib.Observer) (*calib.Result, error)) error {
	p := tea.NewProgram(NewModel(totalSteps))
	go func() {
		result, err := run(ObserverFunc(func(s calib.State) {
			p.Send(StepMsg(s))
		}))
		p.Send(DoneMsg{Result: result, Err: err})
	}()
	_, err := p.Run()
	return err
}
