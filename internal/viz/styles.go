package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(0, 2)
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(18)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text)
}

func accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Accent)
}

func hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Italic(true)
}

// Bar renders a fraction in [0, 1] as a fixed-width bar.
func Bar(fraction float64, width int, style lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	filled := int(fraction*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

// Sparkline draws values in [0, 1] with block characters, sampling down
// to at most width columns.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	step := max(len(values)/width, 1)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := min(max(values[i*step], 0), 1)
		sb.WriteRune(chars[int(v*float64(len(chars)-1)+0.5)])
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(sb.String())
}
