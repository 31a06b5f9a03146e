package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/models"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

func strp(s string) *string { return &s }

func testSnapshot(backends int64) *models.Snapshot {
	snap := &models.Snapshot{
		Timestamp: time.Now(),
		ActiveQueries: []models.ActiveQuery{
			{PID: 100, Usename: strp("postgres"), Datname: strp("app"), State: strp("active"), DurationSecs: 12, Query: strp("select * from orders where id = 1")},
			{PID: 200, Usename: strp("api"), Datname: strp("app"), State: strp("idle in transaction"), DurationSecs: 0.2, Query: strp("update users set name = 'x'")},
		},
		BlockingInfo: []models.BlockingInfo{{BlockedPID: 200, BlockerPID: 100, BlockedQuery: strp("update users")}},
		WaitEvents:   []models.WaitEventCount{{WaitEventType: "Lock", WaitEvent: "transactionid", Count: 1}},
		TableStats:   []models.TableStat{{Schemaname: "public", Relname: "orders", NLiveTup: 1000, NDeadTup: 50, DeadRatio: 5}},
		Indexes:      []models.IndexInfo{{Schemaname: "public", TableName: "orders", IndexName: "orders_pkey", IndexDefinition: "CREATE UNIQUE INDEX orders_pkey ON public.orders USING btree (id)"}},
		StatStatements: []models.StatStatement{
			{QueryID: 7, Query: "SELECT $1", Calls: 10, TotalExecTime: 20, MeanExecTime: 2, HitRatio: 1},
		},
		Replication:    []models.ReplicationInfo{{PID: 300, ApplicationName: strp("replica1")}},
		VacuumProgress: []models.VacuumProgress{{PID: 400, TableName: "public.orders", Phase: "scanning heap", ProgressPct: 42}},
		Wraparound:     []models.WraparoundInfo{{Datname: "app", XIDAge: 1000, XIDsRemaining: 2_000_000_000, PctTowardsWraparound: 0.1}},
		DBSize:         1 << 30,
		WalStats:       &models.WalStats{WalRecords: 10, WalBytes: 4096},
	}
	snap.Summary.TotalBackends = backends
	snap.Summary.ActiveQueryCount = 1
	snap.BufferCache.HitRatio = 0.995
	return snap
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Recording.Dir = t.TempDir()
	cfg.UI.GraphMarker = config.MarkerBlock
	info := models.ServerInfo{
		Version:        "PostgreSQL 16.2 on x86_64",
		MaxConnections: 100,
		Settings:       []models.PgSetting{{Name: "work_mem", Setting: "4096", Unit: strp("kB")}},
		ExtensionsList: []models.PgExtension{{Name: "pg_stat_statements", Version: "1.10", Schema: "public"}},
	}
	a := app.New(models.ConnectionInfo{Host: "db.local", Port: 5432, Database: "app", User: "postgres", SSLLabel: "SSL (verified)"}, 2, 120, cfg, info)
	a.Update(testSnapshot(5))
	a.Update(testSnapshot(7))
	return a
}

func press(a *app.App, keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			a.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
		case "tab":
			a.HandleKey(tea.KeyMsg{Type: tea.KeyTab})
		default:
			a.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func render(a *app.App) string {
	return Render(a, theme.FromConfig(a.Config), 160, 48)
}

func TestFormatDuration(t *testing.T) {
	tests := map[float64]string{
		0.25:   "250ms",
		12.34:  "12.3s",
		245:    "4m05s",
		7980:   "2h13m",
		-1:     "-",
		59.99:  "60.0s",
		3600.5: "1h00m",
	}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v): expected %s, got %s", in, want, got)
		}
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncate("select   *\n from t", 100); got != "select * from t" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
	if got := truncate("abcdefgh", 5); got != "abcd…" {
		t.Errorf("expected abcd…, got %q", got)
	}
	if got := pad("ab", 4); got != "ab  " {
		t.Errorf("expected padded, got %q", got)
	}
	if got := padLeft("ab", 4); got != "  ab" {
		t.Errorf("expected left padded, got %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestMiscFormatters(t *testing.T) {
	if got := formatSpeed(0.25); got != "0.25x" {
		t.Errorf("expected 0.25x, got %s", got)
	}
	if got := formatSpeed(2); got != "2x" {
		t.Errorf("expected 2x, got %s", got)
	}
	if got := bloat(nil, nil); got != "-" {
		t.Errorf("expected -, got %s", got)
	}
	b, p := int64(2048), 12.5
	if got := bloat(&b, &p); got != "12.5% (2.0 KiB)" {
		t.Errorf("unexpected bloat %s", got)
	}
	if got := pidList([]int32{1, 2, 3}, 2); got != "1, 2 and 1 more" {
		t.Errorf("unexpected pid list %s", got)
	}
}

func TestBarsShape(t *testing.T) {
	out := bars([]float64{0, 1, 2, 4}, 6, 2, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 6 {
			t.Errorf("expected 6 columns, got %d in %q", n, l)
		}
	}
	if []rune(lines[0])[5] != '█' || []rune(lines[1])[5] != '█' {
		t.Errorf("expected the peak to fill both rows, got %q", out)
	}
	if []rune(lines[1])[2] != ' ' {
		t.Errorf("expected zero value to stay empty, got %q", out)
	}

	half := bars([]float64{1, 2}, 2, 1, 2)
	if half != "▄█" {
		t.Errorf("expected half blocks, got %q", half)
	}
}

func TestTableRender(t *testing.T) {
	cfg := theme.FromConfig(config.GetDefaults())
	tbl := table{
		title:    "Things (2)",
		columns:  []column{{title: "ID", width: 4, right: true}, {title: "Name"}},
		rows:     [][]cell{{plain("1"), plain("alpha")}, {plain("2"), plain("beta")}},
		selected: 1,
	}
	out := tbl.render(cfg, 40, 8)
	for _, want := range []string{"Things (2)", "Name", "alpha", "beta"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
	if h := lipgloss.Height(out); h != 8 {
		t.Errorf("expected height 8, got %d", h)
	}

	empty := table{title: "None", columns: []column{{title: "X"}}, selected: -1, empty: "Nothing here"}
	if out := empty.render(cfg, 30, 6); !strings.Contains(out, "Nothing here") {
		t.Errorf("expected empty message, got:\n%s", out)
	}
}

func TestTableScrollsToSelection(t *testing.T) {
	cfg := theme.FromConfig(config.GetDefaults())
	tbl := table{title: "Rows", columns: []column{{title: "N"}}, selected: 9}
	for i := range 10 {
		tbl.rows = append(tbl.rows, []cell{plain(string(rune('a' + i)))})
	}
	out := tbl.render(cfg, 20, 7)
	if !strings.Contains(out, "j") {
		t.Errorf("expected selected last row visible:\n%s", out)
	}
	if h := lipgloss.Height(out); h != 7 {
		t.Errorf("expected height 7, got %d", h)
	}
}

func TestRenderEveryPanel(t *testing.T) {
	a := newApp(t)
	keys := map[app.BottomPanel]string{
		app.PanelBlocking:    "tab",
		app.PanelWaitEvents:  "w",
		app.PanelTables:      "t",
		app.PanelReplication: "R",
		app.PanelVacuum:      "v",
		app.PanelWraparound:  "x",
		app.PanelIndexes:     "I",
		app.PanelStatements:  "S",
		app.PanelWalIO:       "A",
		app.PanelSettings:    "P",
		app.PanelExtensions:  "E",
	}
	for _, p := range app.Panels {
		if k, ok := keys[p]; ok {
			press(a, k)
		}
		if a.Panel != p {
			t.Fatalf("expected panel %s, got %s", p.Label(), a.Panel.Label())
		}
		frame := render(a)
		if !strings.Contains(frame, p.Label()) {
			t.Errorf("expected %q in frame", p.Label())
		}
		if h := lipgloss.Height(frame); h != 48 {
			t.Errorf("%s: expected 48 lines, got %d", p.Label(), h)
		}
	}
}

func TestRenderHeaderLive(t *testing.T) {
	a := newApp(t)
	a.UpdateError("connection refused")
	a.Status = "Sort: Duration ↓"
	frame := render(a)
	for _, want := range []string{"pgglance", "db.local:5432/app", "SSL (verified)", "PG 16", "conns: 7/100", "ERR: connection refused", "Sort: Duration"} {
		if !strings.Contains(frame, want) {
			t.Errorf("expected %q in header", want)
		}
	}
	press(a, "p")
	if !strings.Contains(render(a), "PAUSED") {
		t.Error("expected PAUSED in header")
	}
}

func TestRenderQueriesRows(t *testing.T) {
	a := newApp(t)
	frame := render(a)
	for _, want := range []string{"select * from orders", "idle in trans", "12.0s", "sort: Duration"} {
		if !strings.Contains(frame, want) {
			t.Errorf("expected %q in queries panel", want)
		}
	}
}

func TestRenderReplayHeaderAndFooter(t *testing.T) {
	cfg := config.GetDefaults()
	cfg.Recording.Dir = t.TempDir()
	a := app.NewReplay(models.ConnectionInfo{Host: "db", Port: 5432, Database: "app"}, 120, cfg, models.ServerInfo{}, "db_5432.jsonl", 3)
	a.ReplayStepped(testSnapshot(3), 0)
	a.Replay.Playing = true
	frame := render(a)
	for _, want := range []string{"REPLAY", "db_5432.jsonl", "[1/3]", "1x", "PLAYING", "play/pause"} {
		if !strings.Contains(frame, want) {
			t.Errorf("expected %q in replay frame", want)
		}
	}
	if strings.Contains(frame, "cancel/kill") {
		t.Error("expected no cancel/kill hint in replay")
	}
}

func TestRenderOverlays(t *testing.T) {
	a := newApp(t)

	press(a, "enter")
	if frame := render(a); !strings.Contains(frame, "Query PID 100") || !strings.Contains(frame, "C cancel") {
		t.Errorf("expected query inspect overlay:\n%s", frame)
	}
	press(a, "K")
	if frame := render(a); !strings.Contains(frame, "Terminate backend PID 100?") {
		t.Errorf("expected kill confirmation:\n%s", frame)
	}
	press(a, "n", "?")
	if frame := render(a); !strings.Contains(frame, "Keyboard Shortcuts") {
		t.Errorf("expected help overlay:\n%s", frame)
	}
	press(a, "?", ",")
	if frame := render(a); !strings.Contains(frame, "Configuration") || !strings.Contains(frame, "Refresh Interval") {
		t.Errorf("expected config overlay:\n%s", frame)
	}
	a.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	_, _ = a.PopAction()
	press(a, "L")
	if frame := render(a); !strings.Contains(frame, "Recordings (0)") || !strings.Contains(frame, "No recordings in") {
		t.Errorf("expected recordings overlay:\n%s", frame)
	}
}

func TestInspectReportsVanishedRow(t *testing.T) {
	a := newApp(t)
	press(a, "enter")
	snap := testSnapshot(1)
	snap.ActiveQueries = snap.ActiveQueries[1:]
	a.Update(snap)
	if frame := render(a); !strings.Contains(frame, "PID 100 is no longer present") {
		t.Errorf("expected vanished row message:\n%s", frame)
	}
}

func TestFilterFooter(t *testing.T) {
	a := newApp(t)
	press(a, "/", "o", "r", "d")
	frame := render(a)
	if !strings.Contains(frame, "Filter") || !strings.Contains(frame, "confirm") {
		t.Errorf("expected filter footer:\n%s", frame)
	}
	if !strings.Contains(frame, "filter: ord") {
		t.Errorf("expected filter in title:\n%s", frame)
	}
}

func TestStatementsError(t *testing.T) {
	a := newApp(t)
	snap := testSnapshot(1)
	snap.StatStatements = nil
	snap.StatStatementsError = "permission denied for view pg_stat_statements"
	a.Update(snap)
	press(a, "S")
	if frame := render(a); !strings.Contains(frame, "permission denied") {
		t.Errorf("expected statements error in panel:\n%s", frame)
	}
}

func TestHighlightSQLKeepsText(t *testing.T) {
	th := theme.GetTheme(config.ThemeNord)
	out := highlightSQL("SELECT id FROM t WHERE name = 'x' -- note", th)
	for _, want := range []string{"SELECT", "FROM", "'x'", "-- note"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestBrailleGraphRenders(t *testing.T) {
	a := newApp(t)
	a.Config.UI.GraphMarker = config.MarkerBraille
	if frame := render(a); !strings.Contains(frame, "Connections") {
		t.Error("expected connections graph")
	}
}

func TestRenderZeroSizeFallsBack(t *testing.T) {
	a := newApp(t)
	if frame := Render(a, theme.FromConfig(a.Config), 0, 0); frame == "" {
		t.Error("expected a frame at the fallback size")
	}
}
