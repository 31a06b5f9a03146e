package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/config"
)

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Chrome
	HeaderBg      lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	OverlayBg     lipgloss.Color
	HighlightBg   lipgloss.Color

	// Borders by severity
	BorderActive lipgloss.Color
	BorderWarn   lipgloss.Color
	BorderDanger lipgloss.Color
	BorderOK     lipgloss.Color
	BorderDim    lipgloss.Color

	// Graphs
	GraphConnections lipgloss.Color
	GraphCache       lipgloss.Color
	GraphLatency     lipgloss.Color

	// Query durations and backend states
	DurationOK     lipgloss.Color
	DurationWarn   lipgloss.Color
	DurationDanger lipgloss.Color
	StateActive    lipgloss.Color
	StateIdleTxn   lipgloss.Color

	// Syntax highlighting (SQL)
	Keyword lipgloss.Color
	String  lipgloss.Color
	Number  lipgloss.Color
	Comment lipgloss.Color
}

// GetTheme returns the palette for a configured color theme
func GetTheme(name config.ColorTheme) Theme {
	switch name {
	case config.ThemeDracula:
		return DraculaTheme()
	case config.ThemeNord:
		return NordTheme()
	case config.ThemeSolarizedDark:
		return SolarizedDarkTheme()
	case config.ThemeSolarizedLight:
		return SolarizedLightTheme()
	case config.ThemeCatppuccinLatte:
		return CatppuccinLatteTheme()
	default:
		return TokyoNightTheme()
	}
}

// Config is everything the renderer needs to pick colors and glyphs.
// It is rebuilt from the application config on every frame.
type Config struct {
	Theme      Theme
	Marker     config.GraphMarker
	ShowEmojis bool
	WarnSecs   float64
	DangerSecs float64
}

// FromConfig builds the render configuration from the user settings.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Theme:      GetTheme(cfg.UI.ColorTheme),
		Marker:     cfg.UI.GraphMarker,
		ShowEmojis: cfg.UI.ShowEmojis,
		WarnSecs:   cfg.Monitor.WarnDurationSecs,
		DangerSecs: cfg.Monitor.DangerDurationSecs,
	}
}

// DurationColor maps a query duration onto the ok/warn/danger scale.
func (c Config) DurationColor(secs float64) lipgloss.Color {
	switch {
	case secs >= c.DangerSecs:
		return c.Theme.DurationDanger
	case secs >= c.WarnSecs:
		return c.Theme.DurationWarn
	default:
		return c.Theme.DurationOK
	}
}

// StateColor colors a pg_stat_activity state.
func (c Config) StateColor(state string) lipgloss.Color {
	switch state {
	case "active":
		return c.Theme.StateActive
	case "idle in transaction", "idle in transaction (aborted)":
		return c.Theme.StateIdleTxn
	default:
		return c.Theme.ForegroundDim
	}
}
