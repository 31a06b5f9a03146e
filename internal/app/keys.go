package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/filter"
	"github.com/rebeliceyang/pgglance/internal/recorder"
)

// overlayPage is how far pgup/pgdown and ctrl+u/ctrl+d scroll an overlay.
const overlayPage = 10

// overlayMaxScroll bounds G in scrollable overlays; the renderer clamps to
// the real content height.
const overlayMaxScroll = 10000

// HandleKey is the single entry point for key events. Overlays get the key
// first, then the global bindings, then the panel switches and last the
// active panel.
func (a *App) HandleKey(msg tea.KeyMsg) {
	switch a.Mode.Kind {
	case ModeFilter:
		a.handleFilterKey(msg)
		return
	case ModeInspect:
		a.handleInspectKey(msg)
		return
	case ModeConfirm:
		a.handleConfirmKey(msg)
		return
	case ModeConfig:
		a.handleConfigKey(msg)
		return
	case ModeConfigEditField:
		a.handleConfigEditKey(msg)
		return
	case ModeHelp:
		a.handleHelpKey(msg)
		return
	case ModeRecordings:
		a.handleRecordingsKey(msg)
		return
	}

	if a.handleGlobalKey(msg) || a.handleSwitchKey(msg) {
		return
	}
	a.handlePanelKey(msg)
}

func (a *App) handlePanelKey(msg tea.KeyMsg) bool {
	switch a.Panel {
	case PanelQueries:
		return a.handleQueriesKey(msg)
	case PanelIndexes:
		return a.handleIndexesKey(msg)
	case PanelStatements:
		return a.handleStatementsKey(msg)
	case PanelTables:
		return a.handleTablesKey(msg)
	case PanelReplication:
		return handleListKey(msg, &a.Panels.Replication, a.rowCount(PanelReplication), a.inspectSelected)
	case PanelBlocking:
		return handleListKey(msg, &a.Panels.Blocking, a.rowCount(PanelBlocking), a.inspectSelected)
	case PanelVacuum:
		return handleListKey(msg, &a.Panels.Vacuum, a.rowCount(PanelVacuum), a.inspectSelected)
	case PanelWraparound:
		return handleListKey(msg, &a.Panels.Wraparound, a.rowCount(PanelWraparound), a.inspectSelected)
	case PanelSettings:
		return handleListKey(msg, &a.Panels.Settings, a.rowCount(PanelSettings), a.inspectSelected)
	case PanelExtensions:
		return handleListKey(msg, &a.Panels.Extensions, a.rowCount(PanelExtensions), a.inspectSelected)
	}
	return false
}

// handleListKey covers navigation and Enter-to-inspect shared by every panel.
func handleListKey[C filter.Column[C]](msg tea.KeyMsg, view *TableViewState[C], n int, inspect func()) bool {
	switch msg.String() {
	case "up", "k":
		view.SelectPrev(n)
	case "down", "j":
		view.SelectNext(n)
	case "enter":
		inspect()
	default:
		return false
	}
	return true
}

func (a *App) inspectSelected() {
	if t, ok := a.inspectTargetForPanel(); ok {
		a.Mode = inspectMode(t)
		a.OverlayScroll = 0
	}
}

func (a *App) handleQueriesKey(msg tea.KeyMsg) bool {
	view := &a.Panels.Queries
	n := a.rowCount(PanelQueries)
	switch msg.String() {
	case "up", "k":
		view.SelectPrev(n)
		a.Status = ""
	case "down", "j":
		view.SelectNext(n)
		a.Status = ""
	case "enter", "i":
		a.inspectSelected()
	case "K":
		if a.IsReplay() {
			return false
		}
		a.confirmSignal(ConfirmKill, ConfirmKillChoice)
	case "C":
		if a.IsReplay() {
			return false
		}
		a.confirmSignal(ConfirmCancel, ConfirmCancelChoice)
	case "s":
		view.CycleSort()
		view.SelectFirst(a.rowCount(PanelQueries))
		a.Status = fmt.Sprintf("Sort: %s %s", view.Sort.Label(), view.SortArrow())
	default:
		return false
	}
	return true
}

// confirmSignal opens the confirmation for cancelling or killing the selected
// backend. With an active filter matching several backends the user first
// chooses between the single backend and all matches.
func (a *App) confirmSignal(single, choice ConfirmKind) {
	q, ok := a.SelectedQuery()
	if !ok {
		return
	}
	if a.Filter.Active {
		if pids := a.FilteredQueryPIDs(); len(pids) > 1 {
			a.Mode = confirmMode(ConfirmAction{Kind: choice, PID: q.PID, PIDs: pids})
			return
		}
	}
	a.Mode = confirmMode(ConfirmAction{Kind: single, PID: q.PID})
}

func (a *App) handleIndexesKey(msg tea.KeyMsg) bool {
	view := &a.Panels.Indexes
	switch msg.String() {
	case "s":
		view.CycleSort()
		view.SelectFirst(a.rowCount(PanelIndexes))
		a.Status = fmt.Sprintf("Sort: %s %s", view.Sort.Label(), view.SortArrow())
		return true
	case "b":
		return a.requestBloat()
	}
	return handleListKey(msg, view, a.rowCount(PanelIndexes), a.inspectSelected)
}

func (a *App) handleTablesKey(msg tea.KeyMsg) bool {
	view := &a.Panels.Tables
	switch msg.String() {
	case "s":
		view.CycleSort()
		view.SelectFirst(a.rowCount(PanelTables))
		a.Status = fmt.Sprintf("Sort: %s %s", view.Sort.Label(), view.SortArrow())
		return true
	case "b":
		return a.requestBloat()
	}
	return handleListKey(msg, view, a.rowCount(PanelTables), a.inspectSelected)
}

func (a *App) requestBloat() bool {
	if a.IsReplay() {
		return false
	}
	if a.queue(AppAction{Kind: ActionRefreshBloat}) {
		a.BloatLoading = true
		a.Status = "Refreshing bloat estimates..."
	}
	return true
}

func (a *App) handleStatementsKey(msg tea.KeyMsg) bool {
	view := &a.Panels.Statements
	switch msg.String() {
	case "s":
		view.CycleSort()
		view.SelectFirst(a.rowCount(PanelStatements))
		a.Status = fmt.Sprintf("Sort: %s %s", view.Sort.Label(), view.SortArrow())
		return true
	case "X":
		if a.IsReplay() {
			return false
		}
		a.Mode = confirmMode(ConfirmAction{Kind: ConfirmResetStatements})
		return true
	}
	return handleListKey(msg, view, a.rowCount(PanelStatements), a.inspectSelected)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) bool {
	live := !a.IsReplay()
	switch msg.String() {
	case "ctrl+c":
		a.Running = false
	case "q", "esc":
		if a.Panel == PanelQueries {
			a.Running = false
		} else {
			a.switchPanel(PanelQueries)
		}
	case "p":
		if live {
			a.Paused = !a.Paused
		}
	case "r":
		if live {
			a.queue(AppAction{Kind: ActionForceRefresh})
		}
	case "?":
		a.Mode = ViewMode{Kind: ModeHelp}
		a.OverlayScroll = 0
	case ",":
		a.Mode = ViewMode{Kind: ModeConfig}
	case "y":
		if text, ok := a.selectedText(); ok {
			a.copyToClipboard(text)
		}
	case "L":
		if live {
			a.RefreshRecordings()
			a.Recordings.Selected = 0
			a.Mode = ViewMode{Kind: ModeRecordings}
		}
	case "/":
		if a.Panel.SupportsFilter() {
			a.openFilter()
		}
	default:
		return false
	}
	return true
}

var switchKeys = map[string]BottomPanel{
	"Q":   PanelQueries,
	"tab": PanelBlocking,
	"w":   PanelWaitEvents,
	"t":   PanelTables,
	"R":   PanelReplication,
	"v":   PanelVacuum,
	"x":   PanelWraparound,
	"I":   PanelIndexes,
	"S":   PanelStatements,
	"A":   PanelWalIO,
	"P":   PanelSettings,
	"E":   PanelExtensions,
}

func (a *App) handleSwitchKey(msg tea.KeyMsg) bool {
	p, ok := switchKeys[msg.String()]
	if ok {
		a.switchPanel(p)
	}
	return ok
}

// switchPanel shows p, or returns to Queries when p is already shown.
// The filter never carries across panels.
func (a *App) switchPanel(p BottomPanel) {
	if a.Panel == p && p != PanelQueries {
		p = PanelQueries
	}
	a.Panel = p
	a.Filter.clear()
	a.filterInput.SetValue("")
	a.Mode = normalMode()
	a.clampSelections()
}

func (a *App) openFilter() {
	a.Mode = ViewMode{Kind: ModeFilter}
	a.filterInput.SetValue(a.Filter.Text)
	a.filterInput.CursorEnd()
	a.filterInput.Focus()
}

// resetSelection moves the active panel's cursor to its first visible row.
func (a *App) resetSelection() {
	n := a.rowCount(a.Panel)
	switch a.Panel {
	case PanelQueries:
		a.Panels.Queries.SelectFirst(n)
	case PanelIndexes:
		a.Panels.Indexes.SelectFirst(n)
	case PanelStatements:
		a.Panels.Statements.SelectFirst(n)
	case PanelTables:
		a.Panels.Tables.SelectFirst(n)
	case PanelSettings:
		a.Panels.Settings.SelectFirst(n)
	case PanelExtensions:
		a.Panels.Extensions.SelectFirst(n)
	}
}

func (a *App) handleFilterKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		a.Filter.clear()
		a.filterInput.SetValue("")
		a.filterInput.Blur()
		a.Mode = normalMode()
		a.resetSelection()
		return
	case tea.KeyEnter:
		a.Filter.Active = a.Filter.Text != ""
		a.filterInput.Blur()
		a.Mode = normalMode()
		a.resetSelection()
		return
	}

	a.filterInput, _ = a.filterInput.Update(msg)
	if text := a.filterInput.Value(); text != a.Filter.Text {
		a.Filter.Text = text
		a.resetSelection()
	}
}

func (a *App) handleInspectKey(msg tea.KeyMsg) {
	target := a.Mode.Inspect
	switch msg.String() {
	case "esc", "q":
		a.Mode = normalMode()
		a.OverlayScroll = 0
		return
	case "enter":
		if target.Kind == InspectQuery {
			a.Mode = normalMode()
			a.OverlayScroll = 0
		}
		return
	case "y":
		if text, ok := a.inspectText(target); ok {
			a.copyToClipboard(text)
		}
		return
	case "K", "C":
		if target.Kind != InspectQuery || a.IsReplay() {
			return
		}
		if _, ok := a.InspectedQuery(target); !ok {
			a.Status = fmt.Sprintf("PID %d not found or already finished", target.PID)
			return
		}
		kind := ConfirmKill
		if msg.String() == "C" {
			kind = ConfirmCancel
		}
		a.Mode = confirmMode(ConfirmAction{Kind: kind, PID: target.PID})
		a.OverlayScroll = 0
		return
	}
	a.scrollOverlay(msg)
}

// scrollOverlay applies the shared scrolling keys of text overlays.
func (a *App) scrollOverlay(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		a.OverlayScroll = max(a.OverlayScroll-1, 0)
	case "down", "j":
		a.OverlayScroll++
	case "pgup", "ctrl+u":
		a.OverlayScroll = max(a.OverlayScroll-overlayPage, 0)
	case "pgdown", "ctrl+d":
		a.OverlayScroll += overlayPage
	case "g":
		a.OverlayScroll = 0
	case "G":
		a.OverlayScroll = overlayMaxScroll
	}
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) {
	c := a.Mode.Confirm
	key := msg.String()

	switch c.Kind {
	case ConfirmCancelChoice, ConfirmKillChoice:
		switch key {
		case "1", "o":
			kind := ConfirmCancel
			if c.Kind == ConfirmKillChoice {
				kind = ConfirmKill
			}
			a.Mode = normalMode()
			a.executeConfirm(ConfirmAction{Kind: kind, PID: c.PID})
		case "a":
			kind := ConfirmCancelBatch
			if c.Kind == ConfirmKillChoice {
				kind = ConfirmKillBatch
			}
			a.Mode = confirmMode(ConfirmAction{Kind: kind, PIDs: c.PIDs})
		case "esc":
			a.Mode = normalMode()
			a.Status = abortMessage(c.Kind)
		}
		return

	case ConfirmDeleteRecording:
		if key == "y" || key == "Y" {
			a.deleteRecording(c.Path)
		}
		a.Mode = ViewMode{Kind: ModeRecordings}
		return
	}

	a.Mode = normalMode()
	if key == "y" || key == "Y" {
		a.executeConfirm(c)
		return
	}
	a.Status = abortMessage(c.Kind)
}

func (a *App) executeConfirm(c ConfirmAction) {
	switch c.Kind {
	case ConfirmCancel:
		a.queue(AppAction{Kind: ActionCancelQuery, PID: c.PID})
	case ConfirmKill:
		a.queue(AppAction{Kind: ActionTerminateBackend, PID: c.PID})
	case ConfirmCancelBatch:
		a.queue(AppAction{Kind: ActionCancelQueries, PIDs: c.PIDs})
	case ConfirmKillBatch:
		a.queue(AppAction{Kind: ActionTerminateBackends, PIDs: c.PIDs})
	case ConfirmResetStatements:
		a.queue(AppAction{Kind: ActionResetStatStatements})
	}
}

func abortMessage(kind ConfirmKind) string {
	switch kind {
	case ConfirmKill, ConfirmKillChoice:
		return "Kill aborted"
	case ConfirmCancelBatch:
		return "Batch cancel aborted"
	case ConfirmKillBatch:
		return "Batch kill aborted"
	case ConfirmResetStatements:
		return "Statement reset aborted"
	default:
		return "Cancel aborted"
	}
}

func (a *App) handleConfigKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc", "q":
		a.queue(AppAction{Kind: ActionSaveConfig})
		a.Mode = normalMode()
	case "up", "k":
		a.ConfigSelected = max(a.ConfigSelected-1, 0)
	case "down", "j":
		a.ConfigSelected = min(a.ConfigSelected+1, len(config.Items)-1)
	case "left", "h":
		a.adjustConfig(-1)
	case "right", "l":
		a.adjustConfig(1)
	case "enter":
		if config.Items[a.ConfigSelected] == config.ItemRecordingsDir {
			a.fieldInput.SetValue(recorder.Dir(a.Config.Recording.Dir))
			a.fieldInput.CursorEnd()
			a.fieldInput.Focus()
			a.Mode = ViewMode{Kind: ModeConfigEditField}
		}
	}
}

func (a *App) adjustConfig(dir int) {
	item := config.Items[a.ConfigSelected]
	before := a.Config.Monitor.RefreshIntervalSecs
	a.Config.Adjust(item, dir)
	if after := a.Config.Monitor.RefreshIntervalSecs; after != before {
		a.RefreshIntervalSecs = after
		a.queue(AppAction{Kind: ActionRefreshIntervalChanged})
	}
}

func (a *App) handleConfigEditKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		a.fieldInput.Blur()
		a.Mode = ViewMode{Kind: ModeConfig}
		return
	case tea.KeyEnter:
		value := strings.TrimSpace(a.fieldInput.Value())
		if value == "" || value == recorder.DefaultDir() {
			a.Config.Recording.Dir = ""
		} else {
			a.Config.Recording.Dir = value
		}
		a.fieldInput.Blur()
		a.Mode = ViewMode{Kind: ModeConfig}
		return
	}
	a.fieldInput, _ = a.fieldInput.Update(msg)
}

func (a *App) handleHelpKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc", "q", "enter", "?":
		a.Mode = normalMode()
		a.OverlayScroll = 0
		return
	}
	a.scrollOverlay(msg)
}

func (a *App) handleRecordingsKey(msg tea.KeyMsg) {
	n := len(a.Recordings.List)
	switch msg.String() {
	case "esc", "q":
		a.Mode = normalMode()
	case "up", "k":
		a.Recordings.Selected = max(a.Recordings.Selected-1, 0)
	case "down", "j":
		if a.Recordings.Selected < n-1 {
			a.Recordings.Selected++
		}
	case "enter":
		if rec, ok := a.Recordings.Current(); ok {
			a.Recordings.PendingPath = rec.Path
			if a.Config != nil {
				a.Recordings.configRefreshSecs = a.Config.Monitor.RefreshIntervalSecs
			}
			a.Running = false
		}
	case "d":
		if rec, ok := a.Recordings.Current(); ok {
			a.Mode = confirmMode(ConfirmAction{Kind: ConfirmDeleteRecording, Path: rec.Path})
		}
	}
}

func (a *App) deleteRecording(path string) {
	if err := recorder.Delete(path); err != nil {
		a.Status = "Failed to delete recording"
	} else {
		a.Status = "Recording deleted"
	}
	a.RefreshRecordings()
}
