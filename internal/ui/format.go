package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// truncate cuts s to width display cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// padLeft right-aligns s in width cells.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(truncate(s, width), width)
}

// formatDuration renders seconds as 850ms, 12.3s, 4m05s or 2h13m.
func formatDuration(secs float64) string {
	switch {
	case secs < 0:
		return "-"
	case secs < 1:
		return fmt.Sprintf("%.0fms", secs*1000)
	case secs < 60:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 3600:
		m := int(secs) / 60
		return fmt.Sprintf("%dm%02ds", m, int(secs)%60)
	default:
		h := int(secs) / 3600
		return fmt.Sprintf("%dh%02dm", h, (int(secs)%3600)/60)
	}
}

// formatMillis renders a pg_stat_statements time in milliseconds.
func formatMillis(ms float64) string {
	return formatDuration(ms / 1000)
}

func formatBytes(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func formatCount(n int64) string {
	return humanize.Comma(n)
}

func formatPct(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatRate(perSec *float64, unit string) string {
	if perSec == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *perSec, unit)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return humanize.Time(*t)
}

func formatLag(secs *float64) string {
	if secs == nil {
		return "-"
	}
	return formatDuration(*secs)
}

func formatSpeed(speed float64) string {
	if speed == float64(int(speed)) {
		return fmt.Sprintf("%dx", int(speed))
	}
	return fmt.Sprintf("%.2fx", speed)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// bloat renders an estimate as "12.0% (1.2 MiB)", or "-" before one was taken.
func bloat(bytes *int64, pct *float64) string {
	if bytes == nil || pct == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", formatPct(*pct), formatBytes(*bytes))
}
