package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorMuted   = lipgloss.Color("#a6adc8")
	colorBorder  = lipgloss.Color("#45475a")
	colorAccent  = lipgloss.Color("#74c7ec")
	colorFocused = lipgloss.Color("#a6e3a1")
	colorAway    = lipgloss.Color("#fab387")
	colorError   = lipgloss.Color("#f38ba8")

	appStyle = lipgloss.NewStyle().Foreground(colorText).Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(56)

	titleStyle      = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	clockStyle      = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	focusedStyle    = lipgloss.NewStyle().Foreground(colorFocused).Bold(true)
	distractedStyle = lipgloss.NewStyle().Foreground(colorAway).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError)
)
