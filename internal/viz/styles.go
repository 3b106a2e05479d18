package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(52)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)

	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	tableName   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(16)
	tableValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Width(22).Align(lipgloss.Right)
	tableTotal  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Width(22).Align(lipgloss.Right)

	sparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	sparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	sparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values as a one-line bar chart.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / span
		idx := int(norm * float64(len(sparkChars)-1))
		ch := string(sparkChars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(sparkHigh.Render(ch))
		case norm > 0.3:
			b.WriteString(sparkMid.Render(ch))
		default:
			b.WriteString(sparkLow.Render(ch))
		}
	}
	return b.String()
}
