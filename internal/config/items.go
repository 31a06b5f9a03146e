package config

import (
	"fmt"
	"strconv"
)

// Item is one editable row of the config overlay.
type Item int

const (
	ItemGraphMarker Item = iota
	ItemColorTheme
	ItemShowEmojis
	ItemRefreshInterval
	ItemWarnDuration
	ItemDangerDuration
	ItemRecordingRetention
	ItemRecordingsDir
)

// Items lists the overlay rows in display order.
var Items = []Item{
	ItemGraphMarker,
	ItemColorTheme,
	ItemShowEmojis,
	ItemRefreshInterval,
	ItemWarnDuration,
	ItemDangerDuration,
	ItemRecordingRetention,
	ItemRecordingsDir,
}

func (i Item) Label() string {
	switch i {
	case ItemGraphMarker:
		return "Graph Marker"
	case ItemColorTheme:
		return "Color Theme"
	case ItemShowEmojis:
		return "Show Emojis"
	case ItemRefreshInterval:
		return "Refresh Interval"
	case ItemWarnDuration:
		return "Warn Duration"
	case ItemDangerDuration:
		return "Danger Duration"
	case ItemRecordingRetention:
		return "Recording Retention"
	case ItemRecordingsDir:
		return "Recordings Dir"
	}
	return "Unknown"
}

// Value formats the current setting of i for display.
func (c *Config) Value(i Item) string {
	switch i {
	case ItemGraphMarker:
		return c.UI.GraphMarker.Label()
	case ItemColorTheme:
		return c.UI.ColorTheme.Label()
	case ItemShowEmojis:
		if c.UI.ShowEmojis {
			return "On"
		}
		return "Off"
	case ItemRefreshInterval:
		return fmt.Sprintf("%ds", c.Monitor.RefreshIntervalSecs)
	case ItemWarnDuration:
		return strconv.FormatFloat(c.Monitor.WarnDurationSecs, 'f', 1, 64) + "s"
	case ItemDangerDuration:
		return strconv.FormatFloat(c.Monitor.DangerDurationSecs, 'f', 1, 64) + "s"
	case ItemRecordingRetention:
		return formatRetention(c.Recording.RetentionSecs)
	case ItemRecordingsDir:
		if c.Recording.Dir == "" {
			return "(default)"
		}
		return c.Recording.Dir
	}
	return ""
}

func formatRetention(secs int) string {
	if secs >= 3600 && secs%3600 == 0 {
		return fmt.Sprintf("%dh", secs/3600)
	}
	return fmt.Sprintf("%dm", secs/60)
}

// Adjust moves setting i one step in direction dir (negative is left).
// RecordingsDir is edited as text and is not adjustable.
func (c *Config) Adjust(i Item, dir int) {
	step := 1
	if dir < 0 {
		step = -1
	}
	switch i {
	case ItemGraphMarker:
		if step > 0 {
			c.UI.GraphMarker = c.UI.GraphMarker.Next()
		} else {
			c.UI.GraphMarker = c.UI.GraphMarker.Prev()
		}
	case ItemColorTheme:
		if step > 0 {
			c.UI.ColorTheme = c.UI.ColorTheme.Next()
		} else {
			c.UI.ColorTheme = c.UI.ColorTheme.Prev()
		}
	case ItemShowEmojis:
		c.UI.ShowEmojis = !c.UI.ShowEmojis
	case ItemRefreshInterval:
		c.Monitor.RefreshIntervalSecs = clamp(c.Monitor.RefreshIntervalSecs+step, MinRefreshSecs, MaxRefreshSecs)
	case ItemWarnDuration:
		v := c.Monitor.WarnDurationSecs + float64(step)*0.5
		c.Monitor.WarnDurationSecs = clamp(v, MinWarnSecs, c.Monitor.DangerDurationSecs)
	case ItemDangerDuration:
		v := c.Monitor.DangerDurationSecs + float64(step)
		c.Monitor.DangerDurationSecs = clamp(v, c.Monitor.WarnDurationSecs, MaxDangerSecs)
	case ItemRecordingRetention:
		inc := 600
		if c.Recording.RetentionSecs >= 7200 {
			inc = 3600
		}
		c.Recording.RetentionSecs = clamp(c.Recording.RetentionSecs+step*inc, MinRetentionSecs, MaxRetentionSecs)
	}
}
