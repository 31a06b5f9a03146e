package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinLatteTheme returns the Catppuccin Latte theme
// A light pastel theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinLatteTheme() Theme {
	return Theme{
		Name: "catppuccin-latte",

		// Chrome
		HeaderBg:      lipgloss.Color("#e6e9ef"),
		Foreground:    lipgloss.Color("#4c4f69"),
		ForegroundDim: lipgloss.Color("#8c8fa1"),
		OverlayBg:     lipgloss.Color("#eff1f5"),
		HighlightBg:   lipgloss.Color("#dce0e8"),

		// Borders
		BorderActive: lipgloss.Color("#1e66f5"),
		BorderWarn:   lipgloss.Color("#df8e1d"),
		BorderDanger: lipgloss.Color("#d20f39"),
		BorderOK:     lipgloss.Color("#40a02b"),
		BorderDim:    lipgloss.Color("#8c8fa1"),

		// Graphs
		GraphConnections: lipgloss.Color("#1e66f5"),
		GraphCache:       lipgloss.Color("#179299"),
		GraphLatency:     lipgloss.Color("#40a02b"),

		// Durations and states
		DurationOK:     lipgloss.Color("#40a02b"),
		DurationWarn:   lipgloss.Color("#df8e1d"),
		DurationDanger: lipgloss.Color("#d20f39"),
		StateActive:    lipgloss.Color("#40a02b"),
		StateIdleTxn:   lipgloss.Color("#df8e1d"),

		// Syntax highlighting
		Keyword: lipgloss.Color("#8839ef"),
		String:  lipgloss.Color("#40a02b"),
		Number:  lipgloss.Color("#fe640b"),
		Comment: lipgloss.Color("#8c8fa1"),
	}
}
