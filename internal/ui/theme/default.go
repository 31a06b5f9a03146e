package theme

import "github.com/charmbracelet/lipgloss"

// TokyoNightTheme returns the default theme
func TokyoNightTheme() Theme {
	return Theme{
		Name: "tokyo-night",

		// Chrome
		HeaderBg:      lipgloss.Color("#24283b"),
		Foreground:    lipgloss.Color("#c0caf5"),
		ForegroundDim: lipgloss.Color("#737994"),
		OverlayBg:     lipgloss.Color("#1a1b26"),
		HighlightBg:   lipgloss.Color("#282a40"),

		// Borders
		BorderActive: lipgloss.Color("#7dcfff"),
		BorderWarn:   lipgloss.Color("#e0af68"),
		BorderDanger: lipgloss.Color("#f7768e"),
		BorderOK:     lipgloss.Color("#9ece6a"),
		BorderDim:    lipgloss.Color("#3b4261"),

		// Graphs
		GraphConnections: lipgloss.Color("#61afef"),
		GraphCache:       lipgloss.Color("#56b6c2"),
		GraphLatency:     lipgloss.Color("#98c379"),

		// Durations and states
		DurationOK:     lipgloss.Color("#9ece6a"),
		DurationWarn:   lipgloss.Color("#e0af68"),
		DurationDanger: lipgloss.Color("#f7768e"),
		StateActive:    lipgloss.Color("#9ece6a"),
		StateIdleTxn:   lipgloss.Color("#e0af68"),

		// Syntax highlighting
		Keyword: lipgloss.Color("#c678dd"),
		String:  lipgloss.Color("#98c379"),
		Number:  lipgloss.Color("#d19a66"),
		Comment: lipgloss.Color("#5c6370"),
	}
}

// DraculaTheme returns the Dracula theme
func DraculaTheme() Theme {
	return Theme{
		Name: "dracula",

		// Chrome
		HeaderBg:      lipgloss.Color("#282a36"),
		Foreground:    lipgloss.Color("#f8f8f2"),
		ForegroundDim: lipgloss.Color("#6272a4"),
		OverlayBg:     lipgloss.Color("#21222c"),
		HighlightBg:   lipgloss.Color("#37394a"),

		// Borders
		BorderActive: lipgloss.Color("#8be9fd"),
		BorderWarn:   lipgloss.Color("#f1fa8c"),
		BorderDanger: lipgloss.Color("#ff5555"),
		BorderOK:     lipgloss.Color("#50fa7b"),
		BorderDim:    lipgloss.Color("#44475a"),

		// Graphs
		GraphConnections: lipgloss.Color("#8be9fd"),
		GraphCache:       lipgloss.Color("#bd93f9"),
		GraphLatency:     lipgloss.Color("#50fa7b"),

		// Durations and states
		DurationOK:     lipgloss.Color("#50fa7b"),
		DurationWarn:   lipgloss.Color("#f1fa8c"),
		DurationDanger: lipgloss.Color("#ff5555"),
		StateActive:    lipgloss.Color("#50fa7b"),
		StateIdleTxn:   lipgloss.Color("#f1fa8c"),

		// Syntax highlighting
		Keyword: lipgloss.Color("#ff79c6"),
		String:  lipgloss.Color("#f1fa8c"),
		Number:  lipgloss.Color("#bd93f9"),
		Comment: lipgloss.Color("#6272a4"),
	}
}

// NordTheme returns the Nord theme
func NordTheme() Theme {
	return Theme{
		Name: "nord",

		// Chrome
		HeaderBg:      lipgloss.Color("#2e3440"),
		Foreground:    lipgloss.Color("#d8dee9"),
		ForegroundDim: lipgloss.Color("#6b798e"),
		OverlayBg:     lipgloss.Color("#262c39"),
		HighlightBg:   lipgloss.Color("#3b4252"),

		// Borders
		BorderActive: lipgloss.Color("#88c0d0"),
		BorderWarn:   lipgloss.Color("#ebcb8b"),
		BorderDanger: lipgloss.Color("#bf616a"),
		BorderOK:     lipgloss.Color("#a3be8c"),
		BorderDim:    lipgloss.Color("#4c566a"),

		// Graphs
		GraphConnections: lipgloss.Color("#88c0d0"),
		GraphCache:       lipgloss.Color("#8fbcbb"),
		GraphLatency:     lipgloss.Color("#a3be8c"),

		// Durations and states
		DurationOK:     lipgloss.Color("#a3be8c"),
		DurationWarn:   lipgloss.Color("#ebcb8b"),
		DurationDanger: lipgloss.Color("#bf616a"),
		StateActive:    lipgloss.Color("#a3be8c"),
		StateIdleTxn:   lipgloss.Color("#ebcb8b"),

		// Syntax highlighting
		Keyword: lipgloss.Color("#b48ead"),
		String:  lipgloss.Color("#a3be8c"),
		Number:  lipgloss.Color("#d08770"),
		Comment: lipgloss.Color("#4c566a"),
	}
}
