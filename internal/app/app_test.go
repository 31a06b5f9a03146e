package app

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/models"
)

func strp(s string) *string { return &s }

func key(s string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"left":      tea.KeyLeft,
		"right":     tea.KeyRight,
		"tab":       tea.KeyTab,
		"backspace": tea.KeyBackspace,
		"ctrl+c":    tea.KeyCtrlC,
		"pgdown":    tea.KeyPgDown,
	}
	if t, ok := special[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		a.HandleKey(key(k))
	}
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func query(pid int32, secs float64, text string) models.ActiveQuery {
	return models.ActiveQuery{
		PID:          pid,
		Usename:      strp("postgres"),
		Datname:      strp("app"),
		State:        strp("active"),
		DurationSecs: secs,
		Query:        strp(text),
	}
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Timestamp: time.Now(),
		ActiveQueries: []models.ActiveQuery{
			query(100, 3, "select * from orders"),
			query(200, 2, "select * from users"),
			query(300, 1, "select pg_sleep(10)"),
		},
		Indexes: []models.IndexInfo{
			{Schemaname: "public", TableName: "orders", IndexName: "orders_pkey", IdxScan: 50, IndexDefinition: "CREATE UNIQUE INDEX orders_pkey ON public.orders USING btree (id)"},
			{Schemaname: "public", TableName: "users", IndexName: "users_email_idx", IdxScan: 0, IndexDefinition: "CREATE INDEX users_email_idx ON public.users USING btree (email)"},
		},
		TableStats: []models.TableStat{
			{Schemaname: "public", Relname: "orders", NDeadTup: 10},
			{Schemaname: "public", Relname: "users", NDeadTup: 500},
		},
		StatStatements: []models.StatStatement{
			{QueryID: 11, Query: "SELECT 1", TotalExecTime: 10},
			{QueryID: 22, Query: "SELECT 2", TotalExecTime: 20},
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Recording.Dir = t.TempDir()
	a := New(models.ConnectionInfo{Host: "localhost", Port: 5432, Database: "app", User: "postgres"}, 2, 120, cfg, models.ServerInfo{})
	a.copy = func(string) error { return nil }
	a.Update(testSnapshot())
	return a
}

func newReplayApp(t *testing.T) *App {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Recording.Dir = t.TempDir()
	a := NewReplay(models.ConnectionInfo{Host: "localhost", Port: 5432, Database: "app"}, 120, cfg, models.ServerInfo{}, "rec.jsonl", 3)
	a.Update(testSnapshot())
	return a
}

func drain(a *App) []AppAction {
	var out []AppAction
	for {
		action, ok := a.PopAction()
		if !ok {
			return out
		}
		out = append(out, action)
	}
}

func TestNewDefaults(t *testing.T) {
	a := New(models.ConnectionInfo{}, 2, 120, nil, models.ServerInfo{})
	if !a.Running {
		t.Error("expected Running")
	}
	if a.Mode.Kind != ModeNormal || a.Panel != PanelQueries {
		t.Errorf("expected Normal on Queries, got %v on %v", a.Mode.Kind, a.Panel)
	}
	if a.IsReplay() {
		t.Error("expected live app")
	}
	if _, ok := a.Panels.Queries.Selected(); ok {
		t.Error("expected no selection before the first snapshot")
	}
}

func TestUpdateSelectsFirstRowAndClearsError(t *testing.T) {
	a := newTestApp(t)
	a.UpdateError("connection refused")
	if a.LastError != "connection refused" {
		t.Fatalf("expected error banner, got %q", a.LastError)
	}
	a.Update(testSnapshot())
	if a.LastError != "" {
		t.Errorf("expected error cleared, got %q", a.LastError)
	}
	q, ok := a.SelectedQuery()
	if !ok || q.PID != 100 {
		t.Errorf("expected longest query selected, got %+v", q)
	}
	if a.Metrics.Connections.Len() != 2 {
		t.Errorf("expected 2 metric samples, got %d", a.Metrics.Connections.Len())
	}
}

func TestUpdateErrorKeepsSnapshot(t *testing.T) {
	a := newTestApp(t)
	a.UpdateError("timeout")
	if a.Snapshot == nil || len(a.Snapshot.ActiveQueries) != 3 {
		t.Error("expected snapshot kept after error")
	}
}

func TestSelectionClampedWhenRowsShrink(t *testing.T) {
	a := newTestApp(t)
	press(a, "down", "down")
	if i, _ := a.Panels.Queries.Selected(); i != 2 {
		t.Fatalf("expected cursor 2, got %d", i)
	}
	press(a, "down")
	if i, _ := a.Panels.Queries.Selected(); i != 2 {
		t.Errorf("expected cursor to stay at 2, got %d", i)
	}

	snap := testSnapshot()
	snap.ActiveQueries = snap.ActiveQueries[:1]
	a.Update(snap)
	if i, ok := a.Panels.Queries.Selected(); !ok || i != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", i)
	}

	snap = testSnapshot()
	snap.ActiveQueries = nil
	a.Update(snap)
	if _, ok := a.Panels.Queries.Selected(); ok {
		t.Error("expected no selection on empty list")
	}
	if _, ok := a.SelectedQuery(); ok {
		t.Error("expected no selected query")
	}
}

func TestSelectionNeverOutOfRange(t *testing.T) {
	a := newTestApp(t)
	sizes := []int{3, 0, 5, 1, 2, 0, 4}
	keys := []string{"down", "up", "down", "down", "s", "down"}
	for _, n := range sizes {
		snap := testSnapshot()
		snap.ActiveQueries = nil
		for i := range n {
			snap.ActiveQueries = append(snap.ActiveQueries, query(int32(i+1), float64(i), "select"))
		}
		a.Update(snap)
		for _, k := range keys {
			press(a, k)
			i, ok := a.Panels.Queries.Selected()
			count := len(a.QueryIndices())
			if ok && (i < 0 || i >= count) {
				t.Fatalf("cursor %d out of range for %d rows", i, count)
			}
			if !ok && count > 0 {
				t.Fatalf("expected a selection with %d rows", count)
			}
		}
	}
}

func TestKillChoiceBatchFlow(t *testing.T) {
	a := newTestApp(t)

	press(a, "/")
	if a.Mode.Kind != ModeFilter {
		t.Fatalf("expected Filter mode, got %v", a.Mode.Kind)
	}
	typeText(a, "select")
	press(a, "enter")
	if !a.Filter.Active || a.Filter.Text != "select" {
		t.Fatalf("expected active filter 'select', got %+v", a.Filter)
	}

	press(a, "K")
	if a.Mode.Kind != ModeConfirm || a.Mode.Confirm.Kind != ConfirmKillChoice {
		t.Fatalf("expected KillChoice, got %+v", a.Mode)
	}
	if a.Mode.Confirm.PID != 100 {
		t.Errorf("expected selected PID 100, got %d", a.Mode.Confirm.PID)
	}

	press(a, "a")
	if a.Mode.Confirm.Kind != ConfirmKillBatch {
		t.Fatalf("expected KillBatch, got %+v", a.Mode)
	}

	press(a, "y")
	if a.Mode.Kind != ModeNormal {
		t.Errorf("expected Normal, got %v", a.Mode.Kind)
	}
	actions := drain(a)
	if len(actions) != 1 || actions[0].Kind != ActionTerminateBackends {
		t.Fatalf("expected TerminateBackends, got %+v", actions)
	}
	if !slices.Equal(actions[0].PIDs, []int32{100, 200, 300}) {
		t.Errorf("expected PIDs [100 200 300], got %v", actions[0].PIDs)
	}
}

func TestCancelChoiceSingle(t *testing.T) {
	a := newTestApp(t)
	press(a, "/")
	typeText(a, "select")
	press(a, "enter", "down", "C")
	if a.Mode.Confirm.Kind != ConfirmCancelChoice {
		t.Fatalf("expected CancelChoice, got %+v", a.Mode)
	}
	press(a, "1")
	actions := drain(a)
	if len(actions) != 1 || actions[0].Kind != ActionCancelQuery || actions[0].PID != 200 {
		t.Errorf("expected CancelQuery(200), got %+v", actions)
	}
}

func TestChoiceIgnoresOtherKeysAndEscAborts(t *testing.T) {
	a := newTestApp(t)
	press(a, "/")
	typeText(a, "select")
	press(a, "enter", "K", "z")
	if a.Mode.Confirm.Kind != ConfirmKillChoice {
		t.Fatalf("expected choice to stay open, got %+v", a.Mode)
	}
	press(a, "esc")
	if a.Mode.Kind != ModeNormal || a.Status != "Kill aborted" {
		t.Errorf("expected abort, got %v %q", a.Mode.Kind, a.Status)
	}
	if a.PendingActions() != 0 {
		t.Error("expected no queued action")
	}
}

func TestSingleConfirmWithoutFilter(t *testing.T) {
	a := newTestApp(t)
	press(a, "C")
	if a.Mode.Confirm.Kind != ConfirmCancel || a.Mode.Confirm.PID != 100 {
		t.Fatalf("expected Cancel(100), got %+v", a.Mode)
	}
	press(a, "n")
	if a.Status != "Cancel aborted" {
		t.Errorf("expected Cancel aborted, got %q", a.Status)
	}

	press(a, "K", "Y")
	actions := drain(a)
	if len(actions) != 1 || actions[0].Kind != ActionTerminateBackend || actions[0].PID != 100 {
		t.Errorf("expected TerminateBackend(100), got %+v", actions)
	}
}

func TestBatchAbortMessages(t *testing.T) {
	a := newTestApp(t)
	press(a, "/")
	typeText(a, "select")
	press(a, "enter", "C", "a", "n")
	if a.Status != "Batch cancel aborted" {
		t.Errorf("expected Batch cancel aborted, got %q", a.Status)
	}
	press(a, "K", "a", "x")
	if a.Status != "Batch kill aborted" {
		t.Errorf("expected Batch kill aborted, got %q", a.Status)
	}
}

func TestFilterPreviewAndEscClears(t *testing.T) {
	a := newTestApp(t)
	press(a, "/")
	typeText(a, "users")
	if got := len(a.QueryIndices()); got != 1 {
		t.Errorf("expected preview to filter to 1 row, got %d", got)
	}
	press(a, "backspace")
	if a.Filter.Text != "user" {
		t.Errorf("expected backspace to edit, got %q", a.Filter.Text)
	}
	press(a, "esc")
	if a.Filter.Text != "" || a.Filter.Active || a.Mode.Kind != ModeNormal {
		t.Errorf("expected cleared filter, got %+v mode %v", a.Filter, a.Mode.Kind)
	}
	if got := len(a.QueryIndices()); got != 3 {
		t.Errorf("expected all rows, got %d", got)
	}
}

func TestFilterInactiveOrEmptyKeepsAllRows(t *testing.T) {
	a := newTestApp(t)
	a.Filter.Text = "orders"
	if got := len(a.QueryIndices()); got != 3 {
		t.Errorf("expected inactive filter to keep all rows, got %d", got)
	}
	a.Filter.Text = ""
	press(a, "/", "enter")
	if a.Filter.Active {
		t.Error("expected empty filter to stay inactive")
	}
	if got := len(a.QueryIndices()); got != 3 {
		t.Errorf("expected all rows, got %d", got)
	}
}

func TestPanelSwitchClearsFilter(t *testing.T) {
	a := newTestApp(t)
	press(a, "/")
	typeText(a, "orders")
	press(a, "enter")
	if !a.Filter.Active {
		t.Fatal("expected active filter")
	}

	press(a, "I")
	if a.Panel != PanelIndexes {
		t.Fatalf("expected Indexes, got %v", a.Panel)
	}
	if a.Filter.Active || a.Filter.Text != "" {
		t.Errorf("expected filter cleared, got %+v", a.Filter)
	}

	press(a, "I")
	if a.Panel != PanelQueries {
		t.Errorf("expected toggle back to Queries, got %v", a.Panel)
	}
}

func TestFilterOnlyOnSupportedPanels(t *testing.T) {
	a := newTestApp(t)
	press(a, "w", "/")
	if a.Mode.Kind != ModeNormal {
		t.Errorf("expected / ignored on Wait Events, got %v", a.Mode.Kind)
	}
	press(a, "t", "/")
	if a.Mode.Kind != ModeFilter {
		t.Errorf("expected filter on Table Stats, got %v", a.Mode.Kind)
	}
}

func TestFilterAppliesOnlyToActivePanel(t *testing.T) {
	a := newTestApp(t)
	press(a, "I", "/")
	typeText(a, "email")
	press(a, "enter")
	if got := len(a.IndexIndices()); got != 1 {
		t.Errorf("expected 1 index, got %d", got)
	}
	if got := len(a.QueryIndices()); got != 3 {
		t.Errorf("expected queries unfiltered, got %d", got)
	}
}

func TestQuitAndBack(t *testing.T) {
	a := newTestApp(t)
	press(a, "t", "q")
	if a.Panel != PanelQueries || !a.Running {
		t.Fatalf("expected q to return to Queries, got %v running=%v", a.Panel, a.Running)
	}
	press(a, "esc")
	if a.Running {
		t.Error("expected esc on Queries to quit")
	}

	b := newTestApp(t)
	press(b, "S", "ctrl+c")
	if b.Running {
		t.Error("expected ctrl+c to quit from any panel")
	}
}

func TestSortCycleSetsStatus(t *testing.T) {
	a := newTestApp(t)
	press(a, "s")
	if a.Panels.Queries.Sort != QuerySortPID {
		t.Errorf("expected PID sort, got %v", a.Panels.Queries.Sort)
	}
	if a.Status != "Sort: PID ↓" {
		t.Errorf("unexpected status %q", a.Status)
	}
	q, _ := a.SelectedQuery()
	if q.PID != 300 {
		t.Errorf("expected highest PID first, got %d", q.PID)
	}

	press(a, "I", "s", "s")
	if a.Panels.Indexes.Sort != IndexSortName || !a.Panels.Indexes.Ascending {
		t.Errorf("expected ascending Name sort, got %v asc=%v", a.Panels.Indexes.Sort, a.Panels.Indexes.Ascending)
	}
}

func TestNavigationClearsStatus(t *testing.T) {
	a := newTestApp(t)
	a.Status = "something"
	press(a, "down")
	if a.Status != "" {
		t.Errorf("expected status cleared, got %q", a.Status)
	}
}

func TestInspectUsesStableID(t *testing.T) {
	a := newTestApp(t)
	press(a, "down", "enter")
	if a.Mode.Kind != ModeInspect || a.Mode.Inspect.Kind != InspectQuery || a.Mode.Inspect.PID != 200 {
		t.Fatalf("expected Inspect(Query 200), got %+v", a.Mode)
	}

	// Reordered snapshot: the overlay still resolves PID 200.
	snap := testSnapshot()
	slices.Reverse(snap.ActiveQueries)
	a.Update(snap)
	q, ok := a.InspectedQuery(a.Mode.Inspect)
	if !ok || q.PID != 200 {
		t.Errorf("expected PID 200 after reorder, got %+v", q)
	}

	press(a, "enter")
	if a.Mode.Kind != ModeNormal {
		t.Errorf("expected Enter to close query inspect, got %v", a.Mode.Kind)
	}
}

func TestInspectKillFromOverlay(t *testing.T) {
	a := newTestApp(t)
	press(a, "i", "K")
	if a.Mode.Kind != ModeConfirm || a.Mode.Confirm.Kind != ConfirmKill || a.Mode.Confirm.PID != 100 {
		t.Fatalf("expected Kill(100), got %+v", a.Mode)
	}

	a.Mode = inspectMode(InspectTarget{Kind: InspectQuery, PID: 999})
	press(a, "C")
	if a.Mode.Kind != ModeInspect {
		t.Error("expected overlay to stay open for a finished backend")
	}
	if a.Status != "PID 999 not found or already finished" {
		t.Errorf("unexpected status %q", a.Status)
	}
}

func TestInspectIndexAndScroll(t *testing.T) {
	a := newTestApp(t)
	press(a, "I", "enter")
	if a.Mode.Inspect.Kind != InspectIndex || a.Mode.Inspect.Name != "public.users_email_idx" {
		t.Fatalf("expected unused index first, got %+v", a.Mode.Inspect)
	}
	press(a, "enter")
	if a.Mode.Kind != ModeInspect {
		t.Error("expected Enter not to close index inspect")
	}

	press(a, "j", "j", "pgdown")
	if a.OverlayScroll != 12 {
		t.Errorf("expected scroll 12, got %d", a.OverlayScroll)
	}
	press(a, "g")
	if a.OverlayScroll != 0 {
		t.Errorf("expected scroll 0, got %d", a.OverlayScroll)
	}
	press(a, "k")
	if a.OverlayScroll != 0 {
		t.Errorf("expected scroll floor 0, got %d", a.OverlayScroll)
	}
	press(a, "G", "q")
	if a.Mode.Kind != ModeNormal || a.OverlayScroll != 0 {
		t.Errorf("expected closed overlay with reset scroll, got %v %d", a.Mode.Kind, a.OverlayScroll)
	}
}

func TestYank(t *testing.T) {
	a := newTestApp(t)
	var copied string
	a.copy = func(s string) error { copied = s; return nil }

	press(a, "y")
	if copied != "select * from orders" {
		t.Errorf("expected query copied, got %q", copied)
	}
	if a.Status != "Copied: select * from orders" {
		t.Errorf("unexpected status %q", a.Status)
	}

	long := testSnapshot()
	long.ActiveQueries[0].Query = strp("select a_very_long_column_name, another_long_column from t")
	a.Update(long)
	press(a, "y")
	if a.Status != "Copied: select a_very_long_column_name, another_..." {
		t.Errorf("unexpected truncated status %q", a.Status)
	}

	press(a, "I", "y")
	if copied != "CREATE INDEX users_email_idx ON public.users USING btree (email)" {
		t.Errorf("expected index definition, got %q", copied)
	}

	a.copy = func(string) error { return errors.New("no display") }
	press(a, "y")
	if a.Status != "Clipboard error: no display" {
		t.Errorf("unexpected status %q", a.Status)
	}
}

func TestPauseAndRefreshLiveOnly(t *testing.T) {
	a := newTestApp(t)
	press(a, "p")
	if !a.Paused {
		t.Error("expected paused")
	}
	press(a, "r")
	actions := drain(a)
	if len(actions) != 1 || actions[0].Kind != ActionForceRefresh {
		t.Errorf("expected ForceRefresh, got %+v", actions)
	}

	r := newReplayApp(t)
	press(r, "p", "r", "K", "C", "L", "b")
	if r.Paused {
		t.Error("expected pause disabled in replay")
	}
	if r.PendingActions() != 0 {
		t.Errorf("expected no actions in replay, got %d", r.PendingActions())
	}
	if r.Mode.Kind != ModeNormal {
		t.Errorf("expected Normal in replay, got %v", r.Mode.Kind)
	}
	press(r, "t", "b")
	if r.BloatLoading || r.PendingActions() != 0 {
		t.Error("expected bloat refresh disabled in replay")
	}
	press(r, "S", "X")
	if r.Mode.Kind != ModeNormal {
		t.Errorf("expected statement reset disabled in replay, got %v", r.Mode.Kind)
	}
}

func TestBloatRequest(t *testing.T) {
	a := newTestApp(t)
	press(a, "t", "b")
	if !a.BloatLoading || a.Status != "Refreshing bloat estimates..." {
		t.Errorf("expected loading, got %v %q", a.BloatLoading, a.Status)
	}
	actions := drain(a)
	if len(actions) != 1 || actions[0].Kind != ActionRefreshBloat {
		t.Errorf("expected RefreshBloat, got %+v", actions)
	}

	a.Tick()
	a.Tick()
	if a.SpinnerFrame != 2 {
		t.Errorf("expected spinner frame 2, got %d", a.SpinnerFrame)
	}

	a.ApplyBloat(
		map[string]models.BloatEstimate{"public.users": {Bytes: 4096, Pct: 25, Source: models.BloatNaive}},
		map[string]models.BloatEstimate{"public.orders_pkey": {Bytes: 1024, Pct: 5, Source: models.BloatPgstattuple}},
	)
	if a.BloatLoading {
		t.Error("expected loading cleared")
	}
	if pct := a.Snapshot.TableStats[1].BloatPct; pct == nil || *pct != 25 {
		t.Errorf("expected users bloat 25, got %v", pct)
	}
	if a.Snapshot.TableStats[0].BloatPct != nil {
		t.Error("expected orders bloat unset")
	}
	a.Tick()
	if a.SpinnerFrame != 2 {
		t.Error("expected spinner to stop when not loading")
	}
}

func TestBloatCarriedAcrossUpdates(t *testing.T) {
	a := newTestApp(t)
	a.ApplyBloat(
		map[string]models.BloatEstimate{"public.users": {Bytes: 4096, Pct: 25, Source: models.BloatNaive}},
		map[string]models.BloatEstimate{"public.orders_pkey": {Bytes: 1024, Pct: 5, Source: models.BloatPgstattuple}},
	)

	next := testSnapshot()
	next.TableStats = next.TableStats[1:] // orders dropped
	a.Update(next)

	users := a.Snapshot.TableStats[0]
	if users.BloatPct == nil || *users.BloatPct != 25 || *users.BloatBytes != 4096 || users.BloatSource != models.BloatNaive {
		t.Errorf("expected users bloat carried, got %+v", users)
	}
	idx := a.Snapshot.Indexes[0]
	if idx.BloatPct == nil || *idx.BloatPct != 5 || idx.BloatSource != models.BloatPgstattuple {
		t.Errorf("expected index bloat carried, got %+v", idx)
	}
	if a.Snapshot.Indexes[1].BloatPct != nil {
		t.Error("expected unestimated index to stay empty")
	}
}

func TestActionQueueCoalesceAndReject(t *testing.T) {
	a := newTestApp(t)
	press(a, "r", "r")
	if a.PendingActions() != 1 {
		t.Fatalf("expected refresh coalesced, got %d", a.PendingActions())
	}

	press(a, "C", "y", "K", "y", "down", "C", "y")
	if a.PendingActions() != ActionQueueSize {
		t.Fatalf("expected full queue, got %d", a.PendingActions())
	}

	press(a, "K", "y")
	if a.Status != "Action queue full, dropped terminate PID 200" {
		t.Errorf("unexpected status %q", a.Status)
	}

	press(a, "t", "b")
	if a.BloatLoading {
		t.Error("expected rejected bloat refresh not to start loading")
	}

	actions := drain(a)
	want := []ActionKind{ActionForceRefresh, ActionCancelQuery, ActionTerminateBackend, ActionCancelQuery}
	for i, action := range actions {
		if action.Kind != want[i] {
			t.Errorf("action %d: expected %v, got %v", i, want[i], action.Kind)
		}
	}
}

func TestPeekKeepsHead(t *testing.T) {
	a := newTestApp(t)
	press(a, "r")
	if action, ok := a.PeekAction(); !ok || action.Kind != ActionForceRefresh {
		t.Fatalf("expected ForceRefresh at head, got %+v", action)
	}
	if a.PendingActions() != 1 {
		t.Error("expected Peek not to remove")
	}
}

func TestStatementReset(t *testing.T) {
	a := newTestApp(t)
	press(a, "S", "X")
	if a.Mode.Confirm.Kind != ConfirmResetStatements {
		t.Fatalf("expected reset confirm, got %+v", a.Mode)
	}
	press(a, "y")
	actions := drain(a)
	if len(actions) != 1 || actions[0].Kind != ActionResetStatStatements {
		t.Errorf("expected ResetStatStatements, got %+v", actions)
	}
}

func TestConfigOverlay(t *testing.T) {
	a := newTestApp(t)
	press(a, ",")
	if a.Mode.Kind != ModeConfig {
		t.Fatalf("expected Config, got %v", a.Mode.Kind)
	}

	press(a, "right")
	if a.Config.UI.GraphMarker != config.MarkerHalfBlock {
		t.Errorf("expected half block marker, got %v", a.Config.UI.GraphMarker)
	}

	press(a, "j", "j", "j", "l")
	if config.Items[a.ConfigSelected] != config.ItemRefreshInterval {
		t.Fatalf("expected refresh interval row, got %v", config.Items[a.ConfigSelected])
	}
	if a.RefreshIntervalSecs != 3 || a.Config.Monitor.RefreshIntervalSecs != 3 {
		t.Errorf("expected refresh 3s, got %d/%d", a.RefreshIntervalSecs, a.Config.Monitor.RefreshIntervalSecs)
	}

	press(a, "esc")
	if a.Mode.Kind != ModeNormal {
		t.Errorf("expected Normal, got %v", a.Mode.Kind)
	}
	actions := drain(a)
	if len(actions) != 2 || actions[0].Kind != ActionRefreshIntervalChanged || actions[1].Kind != ActionSaveConfig {
		t.Errorf("expected interval change then save, got %+v", actions)
	}
}

func TestConfigRefreshAtBoundQueuesNothing(t *testing.T) {
	a := newTestApp(t)
	a.Config.Monitor.RefreshIntervalSecs = config.MinRefreshSecs
	press(a, ",", "j", "j", "j", "h")
	if a.PendingActions() != 0 {
		t.Errorf("expected no action at the lower bound, got %d", a.PendingActions())
	}
}

func TestConfigEditRecordingsDir(t *testing.T) {
	a := newTestApp(t)
	a.Config.Recording.Dir = ""
	press(a, ",")
	for config.Items[a.ConfigSelected] != config.ItemRecordingsDir {
		press(a, "down")
	}
	press(a, "enter")
	if a.Mode.Kind != ModeConfigEditField {
		t.Fatalf("expected ConfigEditField, got %v", a.Mode.Kind)
	}

	for range len([]rune(a.FieldInput().Value())) {
		press(a, "backspace")
	}
	typeText(a, "  /tmp/recs  ")
	press(a, "enter")
	if a.Mode.Kind != ModeConfig || a.Config.Recording.Dir != "/tmp/recs" {
		t.Errorf("expected trimmed dir saved, got %v %q", a.Mode.Kind, a.Config.Recording.Dir)
	}

	press(a, "enter")
	for range len([]rune(a.FieldInput().Value())) {
		press(a, "backspace")
	}
	press(a, "enter")
	if a.Config.Recording.Dir != "" {
		t.Errorf("expected empty value to reset to default, got %q", a.Config.Recording.Dir)
	}

	press(a, "enter")
	typeText(a, "xyz")
	press(a, "esc")
	if a.Mode.Kind != ModeConfig || a.Config.Recording.Dir != "" {
		t.Errorf("expected esc to discard, got %v %q", a.Mode.Kind, a.Config.Recording.Dir)
	}
}

func TestHelpOverlay(t *testing.T) {
	a := newTestApp(t)
	press(a, "?", "j", "j")
	if a.Mode.Kind != ModeHelp || a.OverlayScroll != 2 {
		t.Fatalf("expected Help scrolled to 2, got %v %d", a.Mode.Kind, a.OverlayScroll)
	}
	press(a, "enter")
	if a.Mode.Kind != ModeNormal || a.OverlayScroll != 0 {
		t.Errorf("expected closed help, got %v %d", a.Mode.Kind, a.OverlayScroll)
	}
}

func writeRecordingHeader(t *testing.T, dir, name string, at time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	line := `{"type":"header","host":"h","port":5432,"dbname":"d","user":"u","server_info":{"version":"PostgreSQL 16.0"},"recorded_at":"` + at.UTC().Format(time.RFC3339) + `"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecordingsOverlay(t *testing.T) {
	a := newTestApp(t)
	dir := a.Config.Recording.Dir
	older := writeRecordingHeader(t, dir, "a.jsonl", time.Now().Add(-time.Hour))
	newer := writeRecordingHeader(t, dir, "b.jsonl", time.Now())

	press(a, "L")
	if a.Mode.Kind != ModeRecordings || len(a.Recordings.List) != 2 {
		t.Fatalf("expected 2 recordings, got %v %d", a.Mode.Kind, len(a.Recordings.List))
	}
	if a.Recordings.List[0].Path != newer {
		t.Errorf("expected newest first, got %s", a.Recordings.List[0].Path)
	}

	press(a, "down", "d")
	if a.Mode.Kind != ModeConfirm || a.Mode.Confirm.Kind != ConfirmDeleteRecording || a.Mode.Confirm.Path != older {
		t.Fatalf("expected delete confirm for %s, got %+v", older, a.Mode)
	}
	press(a, "n")
	if a.Mode.Kind != ModeRecordings {
		t.Errorf("expected back to Recordings, got %v", a.Mode.Kind)
	}
	if _, err := os.Stat(older); err != nil {
		t.Error("expected file kept after abort")
	}

	press(a, "d", "y")
	if a.Status != "Recording deleted" || a.Mode.Kind != ModeRecordings {
		t.Errorf("unexpected state %q %v", a.Status, a.Mode.Kind)
	}
	if len(a.Recordings.List) != 1 || a.Recordings.Selected != 0 {
		t.Errorf("expected list refreshed and selection clamped, got %d sel %d", len(a.Recordings.List), a.Recordings.Selected)
	}

	press(a, "enter")
	if a.Recordings.PendingPath != newer || a.Running {
		t.Errorf("expected replay request for %s, got %q running=%v", newer, a.Recordings.PendingPath, a.Running)
	}
}

func TestRecordingsDeleteFailure(t *testing.T) {
	a := newTestApp(t)
	a.Mode = confirmMode(ConfirmAction{Kind: ConfirmDeleteRecording, Path: filepath.Join(t.TempDir(), "missing.jsonl")})
	press(a, "y")
	if a.Status != "Failed to delete recording" {
		t.Errorf("unexpected status %q", a.Status)
	}
}

func TestSimplePanelsNavigateAndInspect(t *testing.T) {
	a := newTestApp(t)
	snap := testSnapshot()
	snap.Wraparound = []models.WraparoundInfo{{Datname: "app"}, {Datname: "postgres"}}
	a.Update(snap)

	press(a, "x", "down", "enter")
	if a.Mode.Inspect.Kind != InspectWraparound || a.Mode.Inspect.Name != "postgres" {
		t.Errorf("expected wraparound inspect of postgres, got %+v", a.Mode.Inspect)
	}
	if text, ok := a.inspectText(a.Mode.Inspect); !ok || text != "postgres" {
		t.Errorf("expected datname text, got %q", text)
	}
}

func TestKeyLayerOrder(t *testing.T) {
	a := newTestApp(t)

	// Global and switch bindings win on every panel.
	for _, panelKey := range []string{"I", "S", "t", "P", "E"} {
		press(a, panelKey)
		panel := a.Panel
		press(a, "?")
		if a.Mode.Kind != ModeHelp {
			t.Errorf("panel %v: expected help overlay, got %v", panel, a.Mode.Kind)
		}
		press(a, "esc", "w")
		if a.Panel != PanelWaitEvents {
			t.Errorf("expected w to switch to Wait Events, got %v", a.Panel)
		}
		press(a, "Q")
	}

	// Keys no earlier layer claims reach the active panel.
	press(a, "S", "s")
	if !strings.HasPrefix(a.Status, "Sort: ") {
		t.Errorf("expected statements sort status, got %q", a.Status)
	}

	// Overlays still come first: typed text never switches panels.
	press(a, "Q", "/")
	typeText(a, "tIw?")
	if a.Mode.Kind != ModeFilter || a.Panel != PanelQueries {
		t.Errorf("expected filter on Queries, got %v on %v", a.Mode.Kind, a.Panel)
	}
	if a.Filter.Text != "tIw?" {
		t.Errorf("expected filter text tIw?, got %q", a.Filter.Text)
	}
}

func TestResumeLiveRefreshInterval(t *testing.T) {
	a := newTestApp(t)
	writeRecordingHeader(t, a.Config.Recording.Dir, "a.jsonl", time.Now())

	// An interval given on the command line survives a replay that leaves
	// the configuration alone.
	a.RefreshIntervalSecs = 7
	press(a, "L", "enter")
	if a.Running {
		t.Fatal("expected replay request")
	}
	if a.ResumeLive() {
		t.Error("expected no interval change")
	}
	if a.RefreshIntervalSecs != 7 {
		t.Errorf("expected 7s kept, got %d", a.RefreshIntervalSecs)
	}

	// A change made in the replay's config overlay carries over.
	press(a, "L", "enter")
	a.Config.Monitor.RefreshIntervalSecs = 5
	if !a.ResumeLive() {
		t.Error("expected interval change")
	}
	if a.RefreshIntervalSecs != 5 || !a.Running || a.Panel != PanelQueries {
		t.Errorf("expected live on Queries at 5s, got %ds running=%v panel=%v", a.RefreshIntervalSecs, a.Running, a.Panel)
	}
}
