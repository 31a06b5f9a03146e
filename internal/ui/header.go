package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

const headerErrorWidth = 60

type bar struct {
	cfg   theme.Config
	parts []string
}

func (b *bar) add(text string, color lipgloss.Color, bold bool) {
	b.parts = append(b.parts, lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text))
}

func (b *bar) render(width int) string {
	sep := lipgloss.NewStyle().Foreground(b.cfg.Theme.BorderDim).Render(" │ ")
	return fitLine(" "+strings.Join(b.parts, sep), width, b.cfg.Theme.HeaderBg)
}

// fitLine cuts line to width cells and fills the rest with bg.
func fitLine(line string, width int, bg lipgloss.Color) string {
	cut := lipgloss.NewStyle().MaxWidth(width).Render(line)
	return lipgloss.NewStyle().Background(bg).Width(width).Render(cut)
}

func renderHeader(a *app.App, cfg theme.Config, width int) string {
	if a.IsReplay() {
		return replayHeader(a, cfg, width)
	}
	th := cfg.Theme
	b := &bar{cfg: cfg}
	b.add("pgglance", th.BorderActive, true)
	b.add(a.Connection.Display(), th.Foreground, false)
	if a.Connection.User != "" {
		b.add(a.Connection.User, th.Foreground, false)
	}
	if a.Connection.SSLLabel != "" {
		color := th.BorderOK
		if a.Connection.SSLLabel == "No TLS" {
			color = th.ForegroundDim
		}
		b.add(a.Connection.SSLLabel, color, false)
	}
	if major := a.ServerInfo.MajorVersion(); major > 0 {
		b.add(fmt.Sprintf("PG %d", major), th.Foreground, false)
	}

	conns := "conns: 0"
	if a.Snapshot != nil {
		conns = fmt.Sprintf("conns: %d", a.Snapshot.Summary.TotalBackends)
		if a.ServerInfo.MaxConnections > 0 {
			conns += fmt.Sprintf("/%d", a.ServerInfo.MaxConnections)
		}
	}
	b.add(conns, th.Foreground, false)
	b.add(fmt.Sprintf("%ds", a.RefreshIntervalSecs), th.Foreground, false)

	if a.Paused {
		b.add("PAUSED", th.BorderWarn, true)
	}
	if a.Status != "" {
		b.add(a.Status, th.BorderActive, false)
	}
	if a.LastError != "" {
		b.add("ERR: "+truncate(a.LastError, headerErrorWidth), th.BorderDanger, true)
	}
	b.add(time.Now().Format("15:04:05"), th.ForegroundDim, false)
	return b.render(width)
}

func replayHeader(a *app.App, cfg theme.Config, width int) string {
	th := cfg.Theme
	r := a.Replay
	b := &bar{cfg: cfg}
	b.add("REPLAY", th.BorderWarn, true)
	b.add(truncate(r.Filename, 40), th.Foreground, false)
	b.add(fmt.Sprintf("[%d/%d]", r.Position, r.Total), th.BorderActive, false)
	b.add(formatSpeed(r.Speed), th.Foreground, false)
	if r.Playing {
		b.add("PLAYING", th.BorderOK, true)
	} else {
		b.add("PAUSED", th.BorderWarn, true)
	}
	ts := "--:--:--"
	if a.Snapshot != nil && !a.Snapshot.Timestamp.IsZero() {
		ts = a.Snapshot.Timestamp.Local().Format("2006-01-02 15:04:05")
	}
	b.add(ts, th.ForegroundDim, false)
	b.add(a.Connection.Display(), th.ForegroundDim, false)
	if a.Status != "" {
		b.add(a.Status, th.BorderActive, false)
	}
	return b.render(width)
}
