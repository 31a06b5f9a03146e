package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

// column describes one table column. A zero width takes the remaining space;
// only one flexible column per table is honoured.
type column struct {
	title string
	width int
	right bool
}

type cell struct {
	text  string
	color lipgloss.Color
}

func plain(text string) cell { return cell{text: text} }

// table is a bordered, scrollable list with a cursor.
type table struct {
	title    string
	columns  []column
	rows     [][]cell
	selected int
	empty    string
	border   lipgloss.Color
}

func (t table) render(cfg theme.Config, width, height int) string {
	th := cfg.Theme
	border := t.border
	if border == "" {
		border = th.BorderActive
	}
	inner := max(width-2, 1)
	visible := max(height-4, 1)

	widths := t.widths(inner)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(border).Render(truncate(t.title, inner)),
		lipgloss.NewStyle().Bold(true).Foreground(th.ForegroundDim).Render(t.header(widths)),
	}

	if len(t.rows) == 0 {
		msg := t.empty
		if msg == "" {
			msg = "No rows"
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(th.ForegroundDim).Italic(true).Render(pad(msg, inner)))
	}

	offset := 0
	if t.selected >= visible {
		offset = t.selected - visible + 1
	}
	end := min(offset+visible, len(t.rows))
	for i := offset; i < end; i++ {
		lines = append(lines, t.row(cfg, t.rows[i], widths, i == t.selected))
	}

	cut := lipgloss.NewStyle().MaxWidth(inner)
	for i, l := range lines {
		lines[i] = cut.Render(l)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(inner).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

// widths resolves the flexible column against the available space.
func (t table) widths(inner int) []int {
	out := make([]int, len(t.columns))
	fixed, flex := 0, -1
	for i, c := range t.columns {
		out[i] = c.width
		if c.width == 0 && flex < 0 {
			flex = i
			continue
		}
		fixed += c.width + 1
	}
	if flex >= 0 {
		out[flex] = max(inner-fixed, 8)
	}
	return out
}

func (t table) header(widths []int) string {
	parts := make([]string, len(t.columns))
	for i, c := range t.columns {
		if c.right {
			parts[i] = padLeft(c.title, widths[i])
		} else {
			parts[i] = pad(c.title, widths[i])
		}
	}
	return strings.Join(parts, " ")
}

func (t table) row(cfg theme.Config, cells []cell, widths []int, selected bool) string {
	th := cfg.Theme
	parts := make([]string, len(t.columns))
	for i, c := range t.columns {
		var text string
		if i < len(cells) {
			text = cells[i].text
		}
		if c.right {
			text = padLeft(text, widths[i])
		} else {
			text = pad(text, widths[i])
		}
		if selected {
			parts[i] = text
			continue
		}
		color := th.Foreground
		if i < len(cells) && cells[i].color != "" {
			color = cells[i].color
		}
		parts[i] = lipgloss.NewStyle().Foreground(color).Render(text)
	}
	if selected {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(th.Foreground).
			Background(th.HighlightBg).
			Render(strings.Join(parts, " "))
	}
	return strings.Join(parts, " ")
}
