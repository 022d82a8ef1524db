package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
)

const (
	barGlyph    = "█"
	legendGlyph = "■"
)

var placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Italic(true)

// RenderText draws the bars for a terminal, the widest bar taking width
// cells. Every bar gets at least one cell.
func (c BarChart) RenderText(width int) string {
	if c.Empty {
		return placeholderStyle.Render(c.Placeholder)
	}
	if width < 1 {
		width = 1
	}

	labelWidth := 0
	for _, b := range c.Bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.Name))
	}
	label := lipgloss.NewStyle().Width(labelWidth).MarginRight(1)

	lines := make([]string, 0, len(c.Bars))
	for _, b := range c.Bars {
		cells := max(1, int(math.Round(b.WidthPercent/100*float64(width))))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render(strings.Repeat(barGlyph, cells))
		lines = append(lines, fmt.Sprintf("%s%s %s", label.Render(b.Name), bar, aggregate.FormatAmount(b.Amount)))
	}
	return strings.Join(lines, "\n")
}

// RenderLegend lists the slices with their colour swatch and share.
func (c PieChart) RenderLegend() string {
	if c.Empty {
		return placeholderStyle.Render(c.Placeholder)
	}

	lines := make([]string, 0, len(c.Slices))
	for _, s := range c.Slices {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(legendGlyph)
		lines = append(lines, fmt.Sprintf("%s %s %.1f%%", swatch, s.Name, s.Percentage))
	}
	return strings.Join(lines, "\n")
}
