package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/model/response"
	"github.com/dinerozz/focus-session-backend/internal/session"
	"github.com/dinerozz/focus-session-backend/pkg/utils"
)

const trendPoints = 20

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseAnalyzing
	phaseResult
)

// tickMsg carries the session generation so ticks scheduled for an earlier
// session are dropped.
type tickMsg struct {
	gen int
}

type outcomeMsg struct {
	outcome *response.SessionOutcome
	err     error
}

type trendMsg struct {
	points []entity.TrendPoint
	err    error
}

// Model is the terminal dashboard. The Timer is only touched from Update, so
// it never sees concurrent access.
type Model struct {
	api   API
	timer *session.Timer
	phase phase
	// away marks time spent on another task; those seconds are not active.
	away bool
	gen  int

	outcome *response.SessionOutcome
	trend   []entity.TrendPoint
	err     error
}

func NewModel(api API, now func() time.Time) Model {
	return Model{api: api, timer: session.NewTimer(now)}
}

func (m Model) Init() tea.Cmd {
	return m.loadTrend()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.phase != phaseRunning || msg.gen != m.gen {
			return m, nil
		}
		if !m.away {
			m.timer.Tick()
		}
		return m, tick(m.gen)

	case outcomeMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseIdle
			return m, nil
		}
		m.outcome = msg.outcome
		m.phase = phaseResult
		return m, m.loadTrend()

	case trendMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.trend = msg.points
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "s":
		if m.phase == phaseRunning || m.phase == phaseAnalyzing {
			return m, nil
		}
		m.timer.Start()
		m.gen++
		m.phase = phaseRunning
		m.away = false
		m.outcome = nil
		m.err = nil
		return m, tick(m.gen)

	case "tab":
		if m.phase != phaseRunning {
			return m, nil
		}
		if !m.away {
			m.timer.RecordSwitch()
		}
		m.away = !m.away
		return m, nil

	case "x":
		if m.phase != phaseRunning {
			return m, nil
		}
		raw, ok := m.timer.Stop()
		if !ok {
			return m, nil
		}
		m.phase = phaseAnalyzing
		return m, m.complete(raw)
	}

	return m, nil
}

func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) complete(raw session.RawSession) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		outcome, err := api.CompleteSession(context.Background(), raw)
		return outcomeMsg{outcome: outcome, err: err}
	}
}

func (m Model) loadTrend() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		points, err := api.Trend(context.Background(), trendPoints)
		return trendMsg{points: points, err: err}
	}
}

func (m Model) View() string {
	sections := []string{titleStyle.Render("Focus session")}

	sections = append(sections, cardStyle.Render(m.controlsView()))

	if m.phase == phaseResult && m.outcome != nil {
		sections = append(sections, cardStyle.Render(resultView(m.outcome)))
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	}

	sections = append(sections, cardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Focus trend"), renderTrend(m.trend)),
	))

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) controlsView() string {
	var b strings.Builder

	b.WriteString(clockStyle.Render(utils.FormatClock(m.timer.Elapsed())))
	b.WriteString("\n")

	switch m.phase {
	case phaseRunning:
		state := focusedStyle.Render("on task")
		if m.away {
			state = distractedStyle.Render("away")
		}
		fmt.Fprintf(&b, "%s  switches %d  active %ds\n", state, m.timer.SwitchCount(), m.timer.ActiveTicks())
		b.WriteString(mutedStyle.Render("tab switch task · x stop · q quit"))
	case phaseAnalyzing:
		b.WriteString(mutedStyle.Render("Analyzing session..."))
	default:
		b.WriteString(mutedStyle.Render("s start · q quit"))
	}

	return b.String()
}

func resultView(o *response.SessionOutcome) string {
	statusStyle := distractedStyle
	if o.Record.Status == entity.StatusFocused {
		statusStyle = focusedStyle
	}

	lines := []string{
		fmt.Sprintf("%s  intensity %d%%  confidence %d%%",
			statusStyle.Render(string(o.Record.Status)),
			o.IntensityPercent,
			utils.RatioToPercent(o.Classification.Confidence)),
		mutedStyle.Render(fmt.Sprintf("%.1f min · %d switches · %.2f switches/min",
			o.Record.DurationMinutes(), o.Record.SwitchCount, o.Record.SwitchRate)),
	}

	if o.Classification.RemoteUnavailable {
		lines = append(lines, mutedStyle.Render("Basic analysis: classifier unavailable"))
	}
	if o.Record.AdviceText != "" {
		lines = append(lines, "", o.Record.AdviceText)
	}
	if !o.Saved {
		lines = append(lines, errorStyle.Render("Not saved: "+o.SaveError))
	}

	return strings.Join(lines, "\n")
}

// Run starts the dashboard and blocks until the user quits.
func Run(api API) error {
	_, err := tea.NewProgram(NewModel(api, time.Now), tea.WithAltScreen()).Run()
	return err
}
