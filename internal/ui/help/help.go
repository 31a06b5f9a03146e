package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"q, Esc", "Quit (or back to Queries)"},
		{"Ctrl+C", "Force quit"},
		{"p", "Pause/resume refresh"},
		{"r", "Force refresh"},
		{"?", "Toggle help"},
		{",", "Open config"},
		{"L", "Browse recordings"},
		{"y", "Copy selection to clipboard"},
	}
}

// GetPanelKeys returns panel switch key bindings
func GetPanelKeys() []KeyBinding {
	return []KeyBinding{
		{"Q", "Queries"},
		{"Tab", "Blocking"},
		{"w", "Wait events"},
		{"t", "Table stats"},
		{"R", "Replication"},
		{"v", "Vacuum progress"},
		{"x", "Wraparound"},
		{"I", "Indexes"},
		{"S", "Statements"},
		{"A", "WAL & I/O"},
		{"P", "Settings"},
		{"E", "Extensions"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"Enter", "Inspect selection"},
		{"s", "Cycle sort column"},
		{"/", "Filter (Queries, Indexes, Statements, Tables, Settings, Extensions)"},
	}
}

// GetActionKeys returns action key bindings
func GetActionKeys() []KeyBinding {
	return []KeyBinding{
		{"C", "Cancel query"},
		{"K", "Terminate backend"},
		{"b", "Refresh bloat estimates (Tables, Indexes)"},
		{"X", "Reset pg_stat_statements (Statements)"},
	}
}

// GetReplayKeys returns replay key bindings
func GetReplayKeys() []KeyBinding {
	return []KeyBinding{
		{"Space", "Play/pause"},
		{"←/h  →/l", "Step back/forward"},
		{"<  >", "Slower/faster"},
		{"g  G", "Jump to start/end"},
	}
}

// Sections returns every help section in display order
func Sections(replay bool) []Section {
	sections := []Section{
		{"Global", GetGlobalKeys()},
		{"Panels", GetPanelKeys()},
		{"Navigation", GetNavigationKeys()},
	}
	if replay {
		return append(sections, Section{"Replay", GetReplayKeys()})
	}
	return append(sections, Section{"Actions", GetActionKeys()})
}

// Render creates the help view, scrolled down by scroll lines
func Render(width, height, scroll int, replay bool, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderActive).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.GraphConnections).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.BorderWarn).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var lines []string
	lines = append(lines, titleStyle.Render("pgglance - Keyboard Shortcuts"), "")

	for _, section := range Sections(replay) {
		lines = append(lines, sectionStyle.Render(section.Title))
		for _, kb := range section.Keys {
			lines = append(lines, "  "+keyStyle.Render(kb.Key)+descStyle.Render(kb.Description))
		}
		lines = append(lines, "")
	}

	lines = append(lines, lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	// Clamp scroll so G lands on the last page
	visible := max(height-6, 1)
	scroll = min(scroll, max(len(lines)-visible, 0))
	lines = lines[scroll:]
	if len(lines) > visible {
		lines = lines[:visible]
	}

	// Wrap in a box
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderActive).
		Background(th.OverlayBg).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(strings.Join(lines, "\n"))
}
