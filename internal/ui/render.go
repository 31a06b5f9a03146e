// Package ui paints the App into a full-screen frame. It only reads the App.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

const (
	defaultWidth  = 120
	defaultHeight = 40
	footerHeight  = 2
	minPanel      = 6
)

// TerminalSize reports the size of stdout, or 120x40 when it is not a terminal.
func TerminalSize() (int, int) {
	w, h, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// Render draws a with the colors and thresholds of cfg.
func Render(a *app.App, cfg theme.Config, width, height int) string {
	if width <= 0 || height <= 0 {
		width, height = TerminalSize()
	}

	if overlay := renderOverlay(a, cfg, width, height); overlay != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	}

	body := max(height-1-footerHeight, 1)
	graphs := body * 40 / 100
	if body-graphs < minPanel {
		graphs = max(body-minPanel, 0)
	}
	panel := body - graphs

	sections := []string{renderHeader(a, cfg, width)}
	if graphs >= 6 {
		sections = append(sections, renderGraphs(a, cfg, width, graphs))
	} else {
		panel = body
	}
	sections = append(sections,
		renderPanel(a, cfg, width, panel),
		renderFooter(a, cfg, width),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderGraphs lays out the 2x2 grid: connections and server stats on top,
// cache hit ratio and average query duration below.
func renderGraphs(a *app.App, cfg theme.Config, width, height int) string {
	th := cfg.Theme
	m := a.Metrics
	left := width / 2
	right := width - left
	top := height / 2
	bottom := height - top

	conns, _ := m.Connections.Last()
	hit, _ := m.HitRatio.Last()
	avg, _ := m.AvgQueryMs.Last()

	hitColor := th.BorderOK
	switch pct := hit / 10; {
	case m.HitRatio.Len() == 0:
	case pct < 90:
		hitColor = th.BorderDanger
	case pct < 99:
		hitColor = th.BorderWarn
	}

	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		graphBox(cfg, label(cfg, "🔌", "Connections"), fmt.Sprintf("%d (peak %d)", conns, m.Connections.Peak()),
			m.Connections.Floats(), th.GraphConnections, left, top),
		renderStats(a, cfg, right, top),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		graphBox(cfg, label(cfg, "💾", "Cache Hit"), fmt.Sprintf("%.1f%%", hit/10),
			m.HitRatio.Floats(), hitColor, left, bottom),
		graphBox(cfg, label(cfg, "⏱", "Avg Duration"), formatMillis(avg),
			m.AvgQueryMs.Floats(), th.GraphLatency, right, bottom),
	)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func label(cfg theme.Config, emoji, text string) string {
	if cfg.ShowEmojis {
		return emoji + " " + text
	}
	return text
}
