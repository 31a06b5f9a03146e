package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

// spinnerFrame returns the glyph for the n-th spinner tick.
func spinnerFrame(n int) string {
	frames := spinner.Dot.Frames
	return frames[n%len(frames)]
}

// renderStats draws the server summary box of the graph grid.
func renderStats(a *app.App, cfg theme.Config, width, height int) string {
	th := cfg.Theme
	label := lipgloss.NewStyle().Foreground(th.ForegroundDim).Width(16)
	value := lipgloss.NewStyle().Foreground(th.Foreground)
	warn := lipgloss.NewStyle().Foreground(th.BorderWarn).Bold(true)
	kv := func(k, v string, hot bool) string {
		if hot {
			return label.Render(k) + warn.Render(v)
		}
		return label.Render(k) + value.Render(v)
	}

	head := "Server"
	if cfg.ShowEmojis {
		head = "📊 Server"
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(th.BorderActive).Render(head)}

	if a.Snapshot == nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.ForegroundDim).Italic(true).Render("waiting for first snapshot…"))
	} else {
		snap, sum := a.Snapshot, a.Snapshot.Summary
		oldest := "-"
		if sum.OldestXactSecs != nil {
			oldest = formatDuration(*sum.OldestXactSecs)
		}
		uptime := "-"
		if !a.ServerInfo.StartTime.IsZero() {
			uptime = humanize.RelTime(a.ServerInfo.StartTime, snap.Timestamp, "", "")
		}
		m := a.Metrics
		lines = append(lines,
			kv("Uptime", uptime, false),
			kv("Backends", fmt.Sprintf("%d active / %d total", sum.ActiveQueryCount, sum.TotalBackends), false),
			kv("Idle in txn", formatCount(sum.IdleInTransactionCount), sum.IdleInTransactionCount > 0),
			kv("Waiting", formatCount(sum.WaitingCount), sum.WaitingCount > 0),
			kv("Blocking", formatCount(int64(len(snap.BlockingInfo))), len(snap.BlockingInfo) > 0),
			kv("Locks", formatCount(sum.LockCount), false),
			kv("Oldest xact", oldest, sum.OldestXactSecs != nil && *sum.OldestXactSecs >= cfg.DangerSecs),
			kv("Autovacuum", formatCount(sum.AutovacuumCount), false),
			kv("TPS", formatRate(m.CurrentTPS, ""), false),
			kv("WAL", formatRate(kbPerSec(m.CurrentWalRate), " KB/s"), false),
			kv("Blocks read", formatRate(m.CurrentBlksReadRate, "/s"), false),
			kv("Database size", formatBytes(snap.DBSize), false),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderDim).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(joinLines(lines))
}
