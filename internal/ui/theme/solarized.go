package theme

import "github.com/charmbracelet/lipgloss"

func SolarizedDarkTheme() Theme {
	return Theme{
		Name: "solarized-dark",

		// Chrome
		HeaderBg:      lipgloss.Color("#002b36"),
		Foreground:    lipgloss.Color("#839496"),
		ForegroundDim: lipgloss.Color("#586e75"),
		OverlayBg:     lipgloss.Color("#00242e"),
		HighlightBg:   lipgloss.Color("#073642"),

		// Borders
		BorderActive: lipgloss.Color("#268bd2"),
		BorderWarn:   lipgloss.Color("#b58900"),
		BorderDanger: lipgloss.Color("#dc322f"),
		BorderOK:     lipgloss.Color("#859900"),
		BorderDim:    lipgloss.Color("#586e75"),

		// Graphs
		GraphConnections: lipgloss.Color("#268bd2"),
		GraphCache:       lipgloss.Color("#2aa198"),
		GraphLatency:     lipgloss.Color("#859900"),

		// Durations and states
		DurationOK:     lipgloss.Color("#859900"),
		DurationWarn:   lipgloss.Color("#b58900"),
		DurationDanger: lipgloss.Color("#dc322f"),
		StateActive:    lipgloss.Color("#859900"),
		StateIdleTxn:   lipgloss.Color("#b58900"),

		// Syntax highlighting
		Keyword: lipgloss.Color("#6c71c4"),
		String:  lipgloss.Color("#2aa198"),
		Number:  lipgloss.Color("#cb4b16"),
		Comment: lipgloss.Color("#586e75"),
	}
}

func SolarizedLightTheme() Theme {
	return Theme{
		Name: "solarized-light",

		// Chrome
		HeaderBg:      lipgloss.Color("#eee8d5"),
		Foreground:    lipgloss.Color("#657b83"),
		ForegroundDim: lipgloss.Color("#93a1a1"),
		OverlayBg:     lipgloss.Color("#fdf6e3"),
		HighlightBg:   lipgloss.Color("#eee8d5"),

		// Borders
		BorderActive: lipgloss.Color("#268bd2"),
		BorderWarn:   lipgloss.Color("#b58900"),
		BorderDanger: lipgloss.Color("#dc322f"),
		BorderOK:     lipgloss.Color("#859900"),
		BorderDim:    lipgloss.Color("#93a1a1"),

		// Graphs
		GraphConnections: lipgloss.Color("#268bd2"),
		GraphCache:       lipgloss.Color("#2aa198"),
		GraphLatency:     lipgloss.Color("#859900"),

		// Durations and states
		DurationOK:     lipgloss.Color("#859900"),
		DurationWarn:   lipgloss.Color("#b58900"),
		DurationDanger: lipgloss.Color("#dc322f"),
		StateActive:    lipgloss.Color("#859900"),
		StateIdleTxn:   lipgloss.Color("#b58900"),

		// Syntax highlighting
		Keyword: lipgloss.Color("#6c71c4"),
		String:  lipgloss.Color("#2aa198"),
		Number:  lipgloss.Color("#cb4b16"),
		Comment: lipgloss.Color("#93a1a1"),
	}
}
