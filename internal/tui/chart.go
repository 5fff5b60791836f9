package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dinerozz/focus-session-backend/internal/entity"
)

const chartHeight = 5

// renderTrend draws one column per session, tallest at 100% intensity.
func renderTrend(points []entity.TrendPoint) string {
	if len(points) == 0 {
		return mutedStyle.Render("No sessions yet.")
	}

	rows := make([]string, 0, chartHeight+1)
	for level := chartHeight; level >= 1; level-- {
		threshold := level * 100 / chartHeight
		var row strings.Builder
		for _, p := range points {
			cell := " "
			if p.IntensityPercent >= threshold-100/chartHeight/2 {
				cell = "█"
			}
			row.WriteString(columnStyle(p.Status).Render(cell))
			row.WriteString(" ")
		}
		rows = append(rows, row.String())
	}

	axis := strings.Repeat("──", len(points))
	rows = append(rows, mutedStyle.Render(axis))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func columnStyle(status entity.Status) lipgloss.Style {
	if status == entity.StatusFocused {
		return focusedStyle
	}
	return distractedStyle
}
