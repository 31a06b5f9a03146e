package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/filter"
	"github.com/rebeliceyang/pgglance/internal/models"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

// renderPanel draws the active bottom panel.
func renderPanel(a *app.App, cfg theme.Config, width, height int) string {
	snap := a.Snapshot
	if snap == nil {
		snap = &models.Snapshot{}
	}
	var t table
	switch a.Panel {
	case app.PanelQueries:
		t = queriesTable(a, cfg, snap)
	case app.PanelBlocking:
		t = blockingTable(a, cfg, snap)
	case app.PanelWaitEvents:
		t = waitEventsTable(snap)
	case app.PanelTables:
		t = tablesTable(a, cfg, snap)
	case app.PanelReplication:
		t = replicationTable(a, snap)
	case app.PanelVacuum:
		t = vacuumTable(a, snap)
	case app.PanelWraparound:
		t = wraparoundTable(a, cfg, snap)
	case app.PanelIndexes:
		t = indexesTable(a, snap)
	case app.PanelStatements:
		t = statementsTable(a, cfg, snap)
	case app.PanelWalIO:
		return walPanel(a, cfg, snap, width, height)
	case app.PanelSettings:
		t = settingsTable(a)
	case app.PanelExtensions:
		t = extensionsTable(a)
	}
	return t.render(cfg, width, height)
}

// title builds "Label (n) sort: col ↓ filter: text".
func title[C filter.Column[C]](a *app.App, panel app.BottomPanel, n int, view *app.TableViewState[C]) string {
	s := fmt.Sprintf("%s (%d)", panel.Label(), n)
	if view.Sort.Label() != "" {
		s += fmt.Sprintf("  sort: %s %s", view.Sort.Label(), view.SortArrow())
	}
	if a.Filter.Text != "" && (a.Filter.Active || a.Mode.Kind == app.ModeFilter) {
		s += "  filter: " + a.Filter.Text
	}
	return s
}

func cursor[C filter.Column[C]](view *app.TableViewState[C]) int {
	if i, ok := view.Selected(); ok {
		return i
	}
	return -1
}

func queriesTable(a *app.App, cfg theme.Config, snap *models.Snapshot) table {
	indices := a.QueryIndices()
	t := table{
		title: title(a, app.PanelQueries, len(indices), &a.Panels.Queries),
		columns: []column{
			{title: "PID", width: 7, right: true},
			{title: "User", width: 10},
			{title: "Database", width: 10},
			{title: "State", width: 14},
			{title: "Wait", width: 16},
			{title: "Duration", width: 9, right: true},
			{title: "Query"},
		},
		selected: cursor(&a.Panels.Queries),
		empty:    "No active queries",
	}
	for _, i := range indices {
		q := snap.ActiveQueries[i]
		wait := ""
		if q.WaitEventType != nil {
			wait = str(q.WaitEventType) + ":" + str(q.WaitEvent)
		}
		t.rows = append(t.rows, []cell{
			plain(strconv.Itoa(int(q.PID))),
			plain(str(q.Usename)),
			plain(str(q.Datname)),
			{text: str(q.State), color: cfg.StateColor(str(q.State))},
			{text: wait, color: cfg.Theme.ForegroundDim},
			{text: formatDuration(q.DurationSecs), color: cfg.DurationColor(q.DurationSecs)},
			plain(str(q.Query)),
		})
	}
	return t
}

func blockingTable(a *app.App, cfg theme.Config, snap *models.Snapshot) table {
	t := table{
		title: fmt.Sprintf("%s (%d)", app.PanelBlocking.Label(), len(snap.BlockingInfo)),
		columns: []column{
			{title: "Blocked", width: 8, right: true},
			{title: "User", width: 10},
			{title: "Waiting", width: 9, right: true},
			{title: "Blocker", width: 8, right: true},
			{title: "User", width: 10},
			{title: "State", width: 14},
			{title: "Blocked Query"},
		},
		selected: cursor(&a.Panels.Blocking),
		empty:    "No blocking locks",
	}
	if len(snap.BlockingInfo) > 0 {
		t.border = cfg.Theme.BorderDanger
	}
	for _, b := range snap.BlockingInfo {
		t.rows = append(t.rows, []cell{
			plain(strconv.Itoa(int(b.BlockedPID))),
			plain(str(b.BlockedUser)),
			{text: formatDuration(b.BlockedDurationSecs), color: cfg.DurationColor(b.BlockedDurationSecs)},
			{text: strconv.Itoa(int(b.BlockerPID)), color: cfg.Theme.BorderDanger},
			plain(str(b.BlockerUser)),
			{text: str(b.BlockerState), color: cfg.StateColor(str(b.BlockerState))},
			plain(str(b.BlockedQuery)),
		})
	}
	return t
}

func waitEventsTable(snap *models.Snapshot) table {
	t := table{
		title: fmt.Sprintf("%s (%d)", app.PanelWaitEvents.Label(), len(snap.WaitEvents)),
		columns: []column{
			{title: "Type", width: 16},
			{title: "Event", width: 0},
			{title: "Count", width: 8, right: true},
		},
		selected: -1,
		empty:    "No backends waiting",
	}
	for _, w := range snap.WaitEvents {
		t.rows = append(t.rows, []cell{plain(w.WaitEventType), plain(w.WaitEvent), plain(formatCount(w.Count))})
	}
	return t
}

func tablesTable(a *app.App, cfg theme.Config, snap *models.Snapshot) table {
	indices := a.TableStatIndices()
	t := table{
		title: title(a, app.PanelTables, len(indices), &a.Panels.Tables),
		columns: []column{
			{title: "Table"},
			{title: "Size", width: 10, right: true},
			{title: "Live", width: 11, right: true},
			{title: "Dead", width: 10, right: true},
			{title: "Dead%", width: 6, right: true},
			{title: "Seq", width: 9, right: true},
			{title: "Idx", width: 9, right: true},
			{title: "Bloat", width: 20, right: true},
			{title: "Autovacuum", width: 14},
		},
		selected: cursor(&a.Panels.Tables),
		empty:    "No user tables",
	}
	if a.BloatLoading {
		t.title += "  " + spinnerFrame(a.SpinnerFrame) + " estimating bloat"
	}
	for _, i := range indices {
		s := snap.TableStats[i]
		deadColor := cfg.Theme.Foreground
		if s.DeadRatio >= 20 {
			deadColor = cfg.Theme.BorderDanger
		} else if s.DeadRatio >= 5 {
			deadColor = cfg.Theme.BorderWarn
		}
		t.rows = append(t.rows, []cell{
			plain(s.Key()),
			plain(formatBytes(s.TotalSizeBytes)),
			plain(formatCount(s.NLiveTup)),
			{text: formatCount(s.NDeadTup), color: deadColor},
			{text: fmt.Sprintf("%.1f", s.DeadRatio), color: deadColor},
			plain(formatCount(s.SeqScan)),
			plain(formatCount(s.IdxScan)),
			plain(bloat(s.BloatBytes, s.BloatPct)),
			{text: formatTime(s.LastAutovacuum), color: cfg.Theme.ForegroundDim},
		})
	}
	return t
}

func replicationTable(a *app.App, snap *models.Snapshot) table {
	t := table{
		title: fmt.Sprintf("%s (%d)", app.PanelReplication.Label(), len(snap.Replication)),
		columns: []column{
			{title: "PID", width: 7, right: true},
			{title: "Application"},
			{title: "Client", width: 15},
			{title: "State", width: 10},
			{title: "Sync", width: 7},
			{title: "Write Lag", width: 9, right: true},
			{title: "Flush Lag", width: 9, right: true},
			{title: "Replay Lag", width: 10, right: true},
		},
		selected: cursor(&a.Panels.Replication),
		empty:    "No replication peers",
	}
	for _, r := range snap.Replication {
		t.rows = append(t.rows, []cell{
			plain(strconv.Itoa(int(r.PID))),
			plain(str(r.ApplicationName)),
			plain(str(r.ClientAddr)),
			plain(str(r.State)),
			plain(str(r.SyncState)),
			plain(formatLag(r.WriteLagSecs)),
			plain(formatLag(r.FlushLagSecs)),
			plain(formatLag(r.ReplayLagSecs)),
		})
	}
	return t
}

func vacuumTable(a *app.App, snap *models.Snapshot) table {
	t := table{
		title: fmt.Sprintf("%s (%d)", app.PanelVacuum.Label(), len(snap.VacuumProgress)),
		columns: []column{
			{title: "PID", width: 7, right: true},
			{title: "Database", width: 12},
			{title: "Table"},
			{title: "Phase", width: 22},
			{title: "Progress", width: 8, right: true},
			{title: "Dead Tuples", width: 12, right: true},
		},
		selected: cursor(&a.Panels.Vacuum),
		empty:    "No vacuums running",
	}
	for _, v := range snap.VacuumProgress {
		t.rows = append(t.rows, []cell{
			plain(strconv.Itoa(int(v.PID))),
			plain(str(v.Datname)),
			plain(v.TableName),
			plain(v.Phase),
			plain(formatPct(v.ProgressPct)),
			plain(formatCount(v.NumDeadTuples)),
		})
	}
	return t
}

func wraparoundTable(a *app.App, cfg theme.Config, snap *models.Snapshot) table {
	t := table{
		title: fmt.Sprintf("%s (%d)", app.PanelWraparound.Label(), len(snap.Wraparound)),
		columns: []column{
			{title: "Database"},
			{title: "XID Age", width: 14, right: true},
			{title: "Remaining", width: 16, right: true},
			{title: "Used", width: 7, right: true},
		},
		selected: cursor(&a.Panels.Wraparound),
	}
	for _, w := range snap.Wraparound {
		color := cfg.Theme.DurationOK
		switch {
		case w.PctTowardsWraparound >= 75:
			color = cfg.Theme.DurationDanger
		case w.PctTowardsWraparound >= 50:
			color = cfg.Theme.DurationWarn
		}
		t.rows = append(t.rows, []cell{
			plain(w.Datname),
			plain(formatCount(int64(w.XIDAge))),
			plain(formatCount(w.XIDsRemaining)),
			{text: formatPct(w.PctTowardsWraparound), color: color},
		})
	}
	return t
}

func indexesTable(a *app.App, snap *models.Snapshot) table {
	indices := a.IndexIndices()
	t := table{
		title: title(a, app.PanelIndexes, len(indices), &a.Panels.Indexes),
		columns: []column{
			{title: "Index"},
			{title: "Table", width: 20},
			{title: "Size", width: 10, right: true},
			{title: "Scans", width: 10, right: true},
			{title: "Tup Read", width: 11, right: true},
			{title: "Tup Fetch", width: 11, right: true},
			{title: "Bloat", width: 20, right: true},
		},
		selected: cursor(&a.Panels.Indexes),
		empty:    "No user indexes",
	}
	if a.BloatLoading {
		t.title += "  " + spinnerFrame(a.SpinnerFrame) + " estimating bloat"
	}
	for _, i := range indices {
		idx := snap.Indexes[i]
		t.rows = append(t.rows, []cell{
			plain(idx.Key()),
			plain(idx.TableName),
			plain(formatBytes(idx.IndexSizeBytes)),
			plain(formatCount(idx.IdxScan)),
			plain(formatCount(idx.IdxTupRead)),
			plain(formatCount(idx.IdxTupFetch)),
			plain(bloat(idx.BloatBytes, idx.BloatPct)),
		})
	}
	return t
}

func statementsTable(a *app.App, cfg theme.Config, snap *models.Snapshot) table {
	indices := a.StatementIndices()
	t := table{
		title: title(a, app.PanelStatements, len(indices), &a.Panels.Statements),
		columns: []column{
			{title: "Query"},
			{title: "Calls", width: 10, right: true},
			{title: "Total", width: 9, right: true},
			{title: "Mean", width: 9, right: true},
			{title: "Max", width: 9, right: true},
			{title: "Rows", width: 10, right: true},
			{title: "Hit%", width: 6, right: true},
		},
		selected: cursor(&a.Panels.Statements),
		empty:    "No statement statistics",
	}
	switch {
	case snap.StatStatementsError != "":
		t.empty = snap.StatStatementsError
		t.border = cfg.Theme.BorderWarn
	case !snap.Extensions.PgStatStatements && len(snap.StatStatements) == 0:
		t.empty = "pg_stat_statements is not installed"
	}
	for _, i := range indices {
		s := snap.StatStatements[i]
		t.rows = append(t.rows, []cell{
			plain(s.Query),
			plain(formatCount(s.Calls)),
			plain(formatMillis(s.TotalExecTime)),
			{text: formatMillis(s.MeanExecTime), color: cfg.DurationColor(s.MeanExecTime / 1000)},
			plain(formatMillis(s.MaxExecTime)),
			plain(formatCount(s.Rows)),
			plain(formatPct(s.HitRatio * 100)),
		})
	}
	return t
}

func settingsTable(a *app.App) table {
	indices := a.SettingIndices()
	settings := a.ServerInfo.Settings
	t := table{
		title: title(a, app.PanelSettings, len(indices), &a.Panels.Settings),
		columns: []column{
			{title: "Name", width: 36},
			{title: "Setting", width: 20},
			{title: "Unit", width: 6},
			{title: "Context", width: 12},
			{title: "Description"},
		},
		selected: cursor(&a.Panels.Settings),
	}
	for _, i := range indices {
		s := settings[i]
		name := s.Name
		if s.PendingRestart {
			name += " *"
		}
		t.rows = append(t.rows, []cell{
			plain(name),
			plain(s.Setting),
			plain(str(s.Unit)),
			plain(s.Context),
			plain(s.ShortDesc),
		})
	}
	return t
}

func extensionsTable(a *app.App) table {
	indices := a.ExtensionIndices()
	exts := a.ServerInfo.ExtensionsList
	t := table{
		title: title(a, app.PanelExtensions, len(indices), &a.Panels.Extensions),
		columns: []column{
			{title: "Name", width: 24},
			{title: "Version", width: 10},
			{title: "Schema", width: 14},
			{title: "Description"},
		},
		selected: cursor(&a.Panels.Extensions),
	}
	for _, i := range indices {
		e := exts[i]
		t.rows = append(t.rows, []cell{plain(e.Name), plain(e.Version), plain(e.Schema), plain(str(e.Description))})
	}
	return t
}

// walPanel shows WAL and checkpoint counters as two key/value columns.
func walPanel(a *app.App, cfg theme.Config, snap *models.Snapshot, width, height int) string {
	th := cfg.Theme
	label := lipgloss.NewStyle().Foreground(th.ForegroundDim).Width(24)
	value := lipgloss.NewStyle().Foreground(th.Foreground)
	kv := func(k, v string) string { return label.Render(k) + value.Render(v) }

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(th.BorderActive).Render(app.PanelWalIO.Label())}
	if w := snap.WalStats; w != nil {
		lines = append(lines,
			kv("WAL records", formatCount(w.WalRecords)),
			kv("WAL full page images", formatCount(w.WalFpi)),
			kv("WAL bytes", formatBytes(w.WalBytes)),
			kv("WAL buffers full", formatCount(w.WalBuffersFull)),
			kv("WAL rate", formatRate(kbPerSec(a.Metrics.CurrentWalRate), " KB/s")),
		)
	} else {
		lines = append(lines, label.Render("WAL statistics")+value.Render("requires PostgreSQL 14+"))
	}
	lines = append(lines, "")
	if c := snap.CheckpointStats; c != nil {
		lines = append(lines,
			kv("Checkpoints (timed)", formatCount(c.CheckpointsTimed)),
			kv("Checkpoints (requested)", formatCount(c.CheckpointsReq)),
			kv("Checkpoint write time", formatMillis(c.CheckpointWriteTime)),
			kv("Checkpoint sync time", formatMillis(c.CheckpointSyncTime)),
			kv("Buffers by checkpoint", formatCount(c.BuffersCheckpoint)),
			kv("Buffers by backends", formatCount(c.BuffersBackend)),
		)
	}
	lines = append(lines, "",
		kv("Blocks read rate", formatRate(a.Metrics.CurrentBlksReadRate, "/s")),
		kv("Shared blocks hit", formatCount(snap.BufferCache.BlksHit)),
		kv("Shared blocks read", formatCount(snap.BufferCache.BlksRead)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderActive).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(joinLines(lines))
}

func kbPerSec(bytes *float64) *float64 {
	if bytes == nil {
		return nil
	}
	kb := *bytes / 1024
	return &kb
}
