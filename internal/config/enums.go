package config

import "slices"

// GraphMarker selects the glyph set used to draw metric graphs.
type GraphMarker string

const (
	MarkerBraille   GraphMarker = "braille"
	MarkerHalfBlock GraphMarker = "half_block"
	MarkerBlock     GraphMarker = "block"
)

var graphMarkers = []GraphMarker{MarkerBraille, MarkerHalfBlock, MarkerBlock}

func (m GraphMarker) Next() GraphMarker { return cycle(graphMarkers, m, 1) }
func (m GraphMarker) Prev() GraphMarker { return cycle(graphMarkers, m, -1) }

func (m GraphMarker) Label() string {
	switch m {
	case MarkerHalfBlock:
		return "Half Block"
	case MarkerBlock:
		return "Block"
	default:
		return "Braille"
	}
}

func (m GraphMarker) valid() bool { return slices.Contains(graphMarkers, m) }

// ColorTheme names one of the built-in palettes.
type ColorTheme string

const (
	ThemeTokyoNight      ColorTheme = "tokyo_night"
	ThemeDracula         ColorTheme = "dracula"
	ThemeNord            ColorTheme = "nord"
	ThemeSolarizedDark   ColorTheme = "solarized_dark"
	ThemeSolarizedLight  ColorTheme = "solarized_light"
	ThemeCatppuccinLatte ColorTheme = "catppuccin_latte"
)

// ColorThemes lists the palettes in cycling order.
var ColorThemes = []ColorTheme{
	ThemeTokyoNight,
	ThemeDracula,
	ThemeNord,
	ThemeSolarizedDark,
	ThemeSolarizedLight,
	ThemeCatppuccinLatte,
}

func (t ColorTheme) Next() ColorTheme { return cycle(ColorThemes, t, 1) }
func (t ColorTheme) Prev() ColorTheme { return cycle(ColorThemes, t, -1) }

func (t ColorTheme) Label() string {
	switch t {
	case ThemeDracula:
		return "Dracula"
	case ThemeNord:
		return "Nord"
	case ThemeSolarizedDark:
		return "Solarized Dark"
	case ThemeSolarizedLight:
		return "Solarized Light"
	case ThemeCatppuccinLatte:
		return "Catppuccin Latte"
	default:
		return "Tokyo Night"
	}
}

func (t ColorTheme) valid() bool { return slices.Contains(ColorThemes, t) }

func cycle[T comparable](all []T, cur T, step int) T {
	i := slices.Index(all, cur)
	if i < 0 {
		return all[0]
	}
	n := len(all)
	return all[((i+step)%n+n)%n]
}
