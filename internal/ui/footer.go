package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

type hint struct {
	key, desc string
}

// panelSwitches are the one-key jumps between panels.
var panelSwitches = []hint{
	{"⇥", "locks"}, {"w", "waits"}, {"t", "tables"}, {"R", "repl"},
	{"v", "vacuum"}, {"x", "xid"}, {"I", "idx"}, {"S", "stmts"},
	{"A", "wal"}, {"P", "cfg"}, {"E", "ext"},
}

func renderFooter(a *app.App, cfg theme.Config, width int) string {
	th := cfg.Theme
	if a.Mode.Kind == app.ModeFilter {
		label := lipgloss.NewStyle().Bold(true).Foreground(th.HeaderBg).Background(th.BorderActive).Render(" Filter ")
		line1 := " " + label + "  " + a.FilterInput().View()
		line2 := hints(cfg, []hint{{"⏎", "confirm"}, {"Esc", "cancel"}})
		return footerLines(cfg, width, line1, line2)
	}

	section, color := a.Panel.Label(), th.BorderActive
	var keys []hint
	if a.IsReplay() {
		section, color = "Replay", th.BorderWarn
		keys = append(keys, hint{"Space", "play/pause"}, hint{"←→", "step"}, hint{"<>", "speed"}, hint{"g/G", "jump"})
	}
	keys = append(keys, panelKeys(a)...)

	label := lipgloss.NewStyle().Bold(true).Foreground(th.HeaderBg).Background(color).Render(" " + section + " ")
	line1 := " " + label + "  " + hints(cfg, keys)

	global := []hint{{"?", "help"}, {"q", "quit"}}
	if !a.IsReplay() {
		global = []hint{{"p", "pause"}, {"r", "refresh"}, {"L", "recordings"}, {",", "config"}, {"?", "help"}, {"q", "quit"}}
	}
	line2 := " " + hints(cfg, panelSwitches) + "  │  " + hints(cfg, global)
	return footerLines(cfg, width, line1, line2)
}

func panelKeys(a *app.App) []hint {
	live := !a.IsReplay()
	nav := []hint{{"↑↓", "nav"}, {"⏎", "inspect"}}
	switch a.Panel {
	case app.PanelQueries:
		keys := append(nav, hint{"s", "sort"}, hint{"/", "filter"}, hint{"y", "copy"})
		if live {
			keys = append(keys, hint{"C/K", "cancel/kill"})
		}
		return keys
	case app.PanelTables, app.PanelIndexes:
		keys := append(nav, hint{"s", "sort"}, hint{"/", "filter"})
		if a.Panel == app.PanelIndexes {
			keys = append(keys, hint{"y", "copy"})
		}
		if live {
			keys = append(keys, hint{"b", "bloat"})
		}
		return append(keys, hint{"Esc", "back"})
	case app.PanelStatements:
		keys := append(nav, hint{"s", "sort"}, hint{"/", "filter"}, hint{"y", "copy"})
		if live {
			keys = append(keys, hint{"X", "reset"})
		}
		return append(keys, hint{"Esc", "back"})
	case app.PanelSettings, app.PanelExtensions:
		return append(nav, hint{"/", "filter"}, hint{"Esc", "back"})
	case app.PanelWaitEvents, app.PanelWalIO:
		return []hint{{"Esc", "back"}}
	}
	return append(nav, hint{"Esc", "back"})
}

func hints(cfg theme.Config, hs []hint) string {
	key := lipgloss.NewStyle().Bold(true).Foreground(cfg.Theme.BorderActive)
	desc := lipgloss.NewStyle().Foreground(cfg.Theme.ForegroundDim)
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = key.Render(h.key) + desc.Render(" "+h.desc)
	}
	return strings.Join(parts, desc.Render(" · "))
}

func footerLines(cfg theme.Config, width int, lines ...string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fitLine(l, width, cfg.Theme.HeaderBg)
	}
	return joinLines(out)
}
