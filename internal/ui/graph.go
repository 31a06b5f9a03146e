package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

var eighths = []rune(" ▁▂▃▄▅▆▇█")

// graphBox draws one metric series with its title and current value.
func graphBox(cfg theme.Config, title, current string, data []float64, color lipgloss.Color, width, height int) string {
	th := cfg.Theme
	inner := max(width-2, 1)
	rows := max(height-3, 1)

	head := lipgloss.NewStyle().Bold(true).Foreground(color).Render(title)
	value := lipgloss.NewStyle().Foreground(th.Foreground).Render(current)
	gap := max(inner-lipgloss.Width(head)-lipgloss.Width(value), 1)
	lines := []string{head + strings.Repeat(" ", gap) + value}

	var body string
	if len(data) < 2 {
		body = lipgloss.NewStyle().Foreground(th.ForegroundDim).Italic(true).Render("collecting…")
	} else {
		body = lipgloss.NewStyle().Foreground(color).Render(chart(cfg.Marker, data, inner, rows))
	}
	lines = append(lines, body)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderDim).
		Width(inner).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

// chart renders data into a width x height cell area.
func chart(marker config.GraphMarker, data []float64, width, height int) string {
	if marker == config.MarkerBraille {
		c := plot.NewCanvas(width, height)
		c.NumDataPoints = len(data)
		c.ShowAxis = false
		c.LineColors = make([]plot.Color, 1)
		c.Fill([][]float64{data})
		return c.String()
	}
	levels := 8
	switch marker {
	case config.MarkerBlock:
		levels = 1
	case config.MarkerHalfBlock:
		levels = 2
	}
	return bars(data, width, height, levels)
}

// bars draws one column per data point, newest on the right, each cell split
// into levels steps.
func bars(data []float64, width, height, levels int) string {
	if len(data) > width {
		data = data[len(data)-width:]
	}
	peak := 0.0
	for _, v := range data {
		peak = max(peak, v)
	}

	steps := height * levels
	heights := make([]int, len(data))
	for i, v := range data {
		if peak > 0 && v > 0 {
			heights[i] = max(int(v/peak*float64(steps)+0.5), 1)
		}
	}

	var b strings.Builder
	for row := height - 1; row >= 0; row-- {
		b.WriteString(strings.Repeat(" ", width-len(data)))
		for _, h := range heights {
			fill := min(max(h-row*levels, 0), levels)
			b.WriteRune(glyph(fill, levels))
		}
		if row > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func glyph(fill, levels int) rune {
	switch {
	case fill == 0:
		return ' '
	case fill == levels:
		return '█'
	case levels == 2:
		return '▄'
	default:
		return eighths[fill]
	}
}
