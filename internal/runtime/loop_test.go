package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/history"
	"github.com/rebeliceyang/pgglance/internal/models"
	"github.com/rebeliceyang/pgglance/internal/replay"
)

func strp(s string) *string { return &s }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func liveSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Timestamp: time.Now(),
		ActiveQueries: []models.ActiveQuery{
			{PID: 100, State: strp("active"), DurationSecs: 3, Query: strp("select 1")},
			{PID: 200, State: strp("active"), DurationSecs: 1, Query: strp("select 2")},
		},
		TableStats: []models.TableStat{{Schemaname: "public", Relname: "orders"}},
	}
}

func newTestLoop(t *testing.T, opts Options) *Loop {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Recording.Dir = t.TempDir()
	a := app.New(models.ConnectionInfo{Host: "localhost", Port: 5432, Database: "app"}, 2, 120, cfg, models.ServerInfo{})
	a.Update(liveSnapshot())
	if opts.SaveConfig == nil {
		opts.SaveConfig = func(*config.Config) error { return nil }
	}
	l := NewLoop(a, opts)
	l.refresh = time.NewTicker(time.Hour)
	t.Cleanup(l.refresh.Stop)
	return l
}

func pendingCommands(l *Loop) []Command {
	var out []Command
	for {
		select {
		case cmd := <-l.cmds:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

func TestTrySendAssignsIncreasingIDs(t *testing.T) {
	l := newTestLoop(t, Options{})
	l.fetch()
	l.fetch()
	cmds := pendingCommands(l)
	if len(cmds) != 2 || cmds[0].ID != 1 || cmds[1].ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %+v", cmds)
	}

	for range CommandBuffer {
		l.fetch()
	}
	if l.trySend(Command{Kind: CmdFetchSnapshot}) {
		t.Error("expected send to fail on a full channel")
	}
	if l.nextID != 2+CommandBuffer {
		t.Errorf("expected dropped command to not consume an ID, got next %d", l.nextID)
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	l := newTestLoop(t, Options{})
	newer := liveSnapshot()
	newer.Summary.TotalBackends = 42
	l.apply(Result{ID: 5, Kind: CmdFetchSnapshot, Snapshot: newer})

	older := liveSnapshot()
	older.Summary.TotalBackends = 7
	l.apply(Result{ID: 3, Kind: CmdFetchSnapshot, Snapshot: older})

	if l.app.Snapshot.Summary.TotalBackends != 42 {
		t.Errorf("expected newest snapshot kept, got %d backends", l.app.Snapshot.Summary.TotalBackends)
	}

	l.apply(Result{ID: 4, Kind: CmdFetchSnapshot, Err: errors.New("late failure")})
	if l.app.LastError != "" {
		t.Errorf("expected stale error ignored, got %q", l.app.LastError)
	}
	l.apply(Result{ID: 6, Kind: CmdFetchSnapshot, Err: errors.New("connection refused")})
	if l.app.LastError != "connection refused" {
		t.Errorf("expected error banner, got %q", l.app.LastError)
	}
	if l.app.Snapshot.Summary.TotalBackends != 42 {
		t.Error("expected snapshot kept on error")
	}
}

func TestApplySingleOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		kind    CommandKind
		outcome Outcome
		want    string
		refetch bool
	}{
		{"cancel ok", CmdCancelQuery, Outcome{PID: 100, OK: true}, "Cancelled query on PID 100", true},
		{"terminate ok", CmdTerminateBackend, Outcome{PID: 100, OK: true}, "Terminated backend PID 100", true},
		{"gone", CmdCancelQuery, Outcome{PID: 5}, "PID 5 not found or already finished", false},
		{"cancel error", CmdCancelQuery, Outcome{PID: 5, Err: errors.New("denied")}, "Cancel failed: denied", false},
		{"terminate error", CmdTerminateBackend, Outcome{PID: 5, Err: errors.New("denied")}, "Terminate failed: denied", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoop(t, Options{})
			l.apply(Result{Kind: tt.kind, Outcomes: []Outcome{tt.outcome}, Err: tt.outcome.Err})
			if l.app.Status != tt.want {
				t.Errorf("expected %q, got %q", tt.want, l.app.Status)
			}
			if got := len(pendingCommands(l)) > 0; got != tt.refetch {
				t.Errorf("expected refetch %v, got %v", tt.refetch, got)
			}
		})
	}
}

func TestApplyBatchOutcomes(t *testing.T) {
	l := newTestLoop(t, Options{})
	l.apply(Result{Kind: CmdTerminateBackends, Outcomes: []Outcome{
		{PID: 1, OK: true}, {PID: 2}, {PID: 3, OK: true},
	}})
	if want := "Terminated 2/3 backends (1 already finished)"; l.app.Status != want {
		t.Errorf("expected %q, got %q", want, l.app.Status)
	}

	l.apply(Result{Kind: CmdCancelQueries, Outcomes: []Outcome{{PID: 1, OK: true}, {PID: 2, OK: true}}})
	if want := "Cancelled 2/2 queries"; l.app.Status != want {
		t.Errorf("expected %q, got %q", want, l.app.Status)
	}
	if n := len(pendingCommands(l)); n != 2 {
		t.Errorf("expected a refetch after each batch, got %d commands", n)
	}
}

func TestApplyBloatAndReset(t *testing.T) {
	l := newTestLoop(t, Options{})
	l.app.BloatLoading = true
	l.apply(Result{Kind: CmdRefreshBloat, Err: errors.New("timeout")})
	if l.app.BloatLoading {
		t.Error("expected loading cleared on failure")
	}
	if l.app.Status != "Bloat estimation failed: timeout" {
		t.Errorf("unexpected status %q", l.app.Status)
	}

	exec := &fakeExecutor{}
	bloat, _ := exec.FetchBloat(context.Background())
	l.apply(Result{Kind: CmdRefreshBloat, Bloat: bloat})
	if want := "Bloat estimates refreshed (1 tables, 0 indexes)"; l.app.Status != want {
		t.Errorf("expected %q, got %q", want, l.app.Status)
	}
	if pct := l.app.Snapshot.TableStats[0].BloatPct; pct == nil || *pct != 10 {
		t.Errorf("expected bloat applied, got %v", pct)
	}

	l.apply(Result{Kind: CmdResetStatStatements, Err: errors.New("must be superuser")})
	if l.app.Status != "Statement reset failed: must be superuser" {
		t.Errorf("unexpected status %q", l.app.Status)
	}
	l.apply(Result{Kind: CmdResetStatStatements})
	if l.app.Status != "Statement statistics reset" {
		t.Errorf("unexpected status %q", l.app.Status)
	}
}

func TestAuditWritesActionLog(t *testing.T) {
	store, err := history.NewStore(filepath.Join(t.TempDir(), "actions.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	l := newTestLoop(t, Options{Store: store})
	l.apply(Result{Kind: CmdTerminateBackend, Outcomes: []Outcome{{PID: 100, OK: true}}})
	l.apply(Result{Kind: CmdCancelQueries, Outcomes: []Outcome{{PID: 1, OK: true}, {PID: 2}}})
	l.apply(Result{Kind: CmdFetchSnapshot, ID: 1, Snapshot: liveSnapshot()})

	entries, err := store.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	var terminate *history.ActionEntry
	for i := range entries {
		if entries[i].Action == "terminate_backend" {
			terminate = &entries[i]
		}
	}
	if terminate == nil {
		t.Fatal("expected terminate_backend entry")
	}
	if terminate.PID != 100 || !terminate.Success || terminate.Connection != "localhost:5432/app" {
		t.Errorf("unexpected entry %+v", terminate)
	}
}

func TestDrainKeepsHeadWhenChannelFull(t *testing.T) {
	l := newTestLoop(t, Options{})
	for range CommandBuffer {
		l.fetch()
	}

	l.app.HandleKey(runes("C"))
	l.app.HandleKey(runes("y"))
	if l.app.PendingActions() != 1 {
		t.Fatalf("expected 1 pending action, got %d", l.app.PendingActions())
	}

	l.drainActions()
	if l.app.PendingActions() != 1 {
		t.Errorf("expected action kept while channel full, got %d", l.app.PendingActions())
	}

	<-l.cmds
	l.drainActions()
	if l.app.PendingActions() != 0 {
		t.Errorf("expected action sent, got %d pending", l.app.PendingActions())
	}
	cmds := pendingCommands(l)
	last := cmds[len(cmds)-1]
	if last.Kind != CmdCancelQuery || last.PID != 100 {
		t.Errorf("expected cancel of PID 100, got %+v", last)
	}
}

func TestDrainHandlesLocalActions(t *testing.T) {
	saved := 0
	l := newTestLoop(t, Options{SaveConfig: func(*config.Config) error {
		saved++
		return errors.New("read-only file system")
	}})

	l.app.HandleKey(runes(","))
	l.app.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	l.drainActions()

	if saved != 1 {
		t.Errorf("expected config saved once, got %d", saved)
	}
	if !strings.HasPrefix(l.app.Status, "Failed to save config: ") {
		t.Errorf("expected save failure status, got %q", l.app.Status)
	}
	if n := len(pendingCommands(l)); n != 0 {
		t.Errorf("expected no worker commands, got %d", n)
	}
}

func TestCommandFor(t *testing.T) {
	cmd := commandFor(app.AppAction{Kind: app.ActionTerminateBackends, PIDs: []int32{1, 2}})
	if cmd.Kind != CmdTerminateBackends || len(cmd.PIDs) != 2 {
		t.Errorf("unexpected command %+v", cmd)
	}
	if cmd := commandFor(app.AppAction{Kind: app.ActionForceRefresh}); cmd.Kind != CmdFetchSnapshot {
		t.Errorf("expected fetch for force refresh, got %v", cmd.Kind)
	}
}

func TestRenderReplacesUnreadFrame(t *testing.T) {
	n := 0
	l := newTestLoop(t, Options{Render: func(*app.App, int, int) string {
		n++
		return "frame" + string(rune('0'+n))
	}})
	l.render(l.app)
	l.render(l.app)
	if got := <-l.Frames(); got != "frame2" {
		t.Errorf("expected latest frame, got %s", got)
	}
	select {
	case f := <-l.Frames():
		t.Errorf("expected no further frames, got %s", f)
	default:
	}
}

func TestStepPrefersInput(t *testing.T) {
	l := newTestLoop(t, Options{})
	l.results <- Result{ID: 1, Kind: CmdFetchSnapshot, Err: errors.New("boom")}
	l.input <- tea.WindowSizeMsg{Width: 100, Height: 40}

	l.step(context.Background(), nil, nil)
	if l.width != 100 || l.app.LastError != "" {
		t.Errorf("expected input handled first, got width %d error %q", l.width, l.app.LastError)
	}
	l.step(context.Background(), nil, nil)
	if l.app.LastError != "boom" {
		t.Errorf("expected result applied second, got %q", l.app.LastError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !l.step(ctx, nil, nil) {
		t.Error("expected step to report done on cancel")
	}
}

func TestRunFetchesAndQuits(t *testing.T) {
	exec := &fakeExecutor{}
	l := newTestLoop(t, Options{Render: func(a *app.App, w, h int) string {
		if a.Snapshot != nil && a.Snapshot.Summary.TotalBackends > 0 {
			return "ready"
		}
		return "waiting"
	}})
	l.app.Snapshot = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = NewWorker(exec, l.logger).Run(ctx, l.Commands(), l.Results()) }()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	for ready := false; !ready; {
		select {
		case f := <-l.Frames():
			ready = f == "ready"
		case <-ctx.Done():
			t.Fatal("timed out waiting for first snapshot")
		}
	}

	l.Input() <- runes("q")
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean exit, got %v", err)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for loop to stop")
	}
}

func replaySession(n int) *replay.Session {
	s := &replay.Session{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range n {
		snap := &models.Snapshot{Timestamp: base.Add(time.Duration(i) * time.Second)}
		snap.Summary.TotalBackends = int64(i)
		s.Snapshots = append(s.Snapshots, snap)
	}
	return s
}

func TestHandleReplayKey(t *testing.T) {
	l := newTestLoop(t, Options{})
	s := replaySession(3)
	ra := l.newReplayApp(s, "/tmp/rec.jsonl")
	var last time.Time

	if ra.Replay.Filename != "rec.jsonl" || ra.Replay.Position != 1 || !ra.Replay.Playing {
		t.Fatalf("unexpected replay state %+v", ra.Replay)
	}

	if !handleReplayKey(ra, s, runes(" "), &last) || ra.Replay.Playing {
		t.Error("expected space to pause")
	}
	handleReplayKey(ra, s, tea.KeyMsg{Type: tea.KeyRight}, &last)
	if ra.Replay.Position != 2 || ra.Snapshot.Summary.TotalBackends != 1 {
		t.Errorf("expected step forward, got position %d", ra.Replay.Position)
	}
	handleReplayKey(ra, s, runes(">"), &last)
	if ra.Replay.Speed != 2 {
		t.Errorf("expected speed 2, got %v", ra.Replay.Speed)
	}
	handleReplayKey(ra, s, runes("G"), &last)
	if ra.Replay.Position != 3 || ra.Replay.Playing {
		t.Errorf("expected end and stopped, got %+v", ra.Replay)
	}
	handleReplayKey(ra, s, runes("g"), &last)
	if ra.Replay.Position != 1 {
		t.Errorf("expected start, got %d", ra.Replay.Position)
	}
	if handleReplayKey(ra, s, runes("x"), &last) {
		t.Error("expected unrelated key to pass through")
	}

	ra.HandleKey(runes("/"))
	if ra.Mode.Kind != app.ModeFilter {
		t.Fatalf("expected filter mode, got %v", ra.Mode.Kind)
	}
	for _, k := range []string{" ", ">", "l", "g"} {
		if handleReplayKey(ra, s, runes(k), &last) {
			t.Errorf("expected %q left to the filter input", k)
		}
	}
}

func TestRunReplayMissingFile(t *testing.T) {
	l := NewLoop(nil, Options{Config: config.GetDefaults()})
	if err := l.RunReplay(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing recording")
	}
}

func TestReplayFileFailureReportsStatus(t *testing.T) {
	l := newTestLoop(t, Options{})
	if err := l.replayFile(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl")); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !strings.HasPrefix(l.app.Status, "Failed to load recording: ") {
		t.Errorf("unexpected status %q", l.app.Status)
	}
}

func TestBridgeForwardsInput(t *testing.T) {
	input := make(chan tea.Msg, 1)
	done := make(chan struct{})
	b := NewBridge(input, done)

	b.Update(runes("q"))
	if msg := <-input; msg.(tea.KeyMsg).String() != "q" {
		t.Errorf("expected q forwarded, got %v", msg)
	}
	b.Update(FrameMsg("hello"))
	if b.View() != "hello" {
		t.Errorf("expected frame shown, got %q", b.View())
	}

	input <- runes("x")
	close(done)
	if _, cmd := b.Update(runes("y")); cmd == nil {
		t.Error("expected quit once the loop is done")
	}
}
