package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/recorder"
	"github.com/rebeliceyang/pgglance/internal/ui/help"
	"github.com/rebeliceyang/pgglance/internal/ui/theme"
)

// renderOverlay returns the popup for the active mode, or "" when none.
func renderOverlay(a *app.App, cfg theme.Config, width, height int) string {
	switch a.Mode.Kind {
	case app.ModeInspect:
		return renderInspect(a, cfg, width, height)
	case app.ModeConfirm:
		return renderConfirm(a, cfg, width)
	case app.ModeConfig, app.ModeConfigEditField:
		return renderConfig(a, cfg, width)
	case app.ModeHelp:
		return help.Render(min(width, 76), height, a.OverlayScroll, a.IsReplay(), cfg.Theme)
	case app.ModeRecordings:
		return renderRecordings(a, cfg, width, height)
	}
	return ""
}

// box is the frame shared by every popup.
func box(cfg theme.Config, title, body string, width int, border lipgloss.Color) string {
	th := cfg.Theme
	head := lipgloss.NewStyle().Bold(true).Foreground(border).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(th.OverlayBg).
		Padding(0, 1).
		Width(width).
		Render(head + "\n\n" + body)
}

type field struct {
	key, value string
}

func fields(cfg theme.Config, rows []field) []string {
	label := lipgloss.NewStyle().Foreground(cfg.Theme.ForegroundDim).Width(18)
	value := lipgloss.NewStyle().Foreground(cfg.Theme.Foreground)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, label.Render(r.key)+value.Render(orDash(r.value)))
	}
	return out
}

func renderInspect(a *app.App, cfg theme.Config, width, height int) string {
	th := cfg.Theme
	w := max(min(width-8, 110), 20)
	title, lines, hint := inspectContent(a, cfg, w-2)

	visible := max(height-10, 3)
	scroll := min(a.OverlayScroll, max(len(lines)-visible, 0))
	lines = lines[scroll:]
	if len(lines) > visible {
		lines = lines[:visible]
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(th.ForegroundDim).Render(hint))
	return box(cfg, title, joinLines(lines), w, th.BorderActive)
}

// inspectContent resolves the inspected row by its stable id. A row that
// left the snapshot is reported instead of falling back to another one.
func inspectContent(a *app.App, cfg theme.Config, width int) (string, []string, string) {
	t := a.Mode.Inspect
	th := cfg.Theme
	const closeHint = "↑↓ scroll · esc close"
	gone := func(what string) (string, []string, string) {
		return "Inspect", []string{lipgloss.NewStyle().Foreground(th.BorderWarn).Render(what + " is no longer present")}, closeHint
	}
	wrapSQL := func(sql string) []string {
		wrapped := lipgloss.NewStyle().Width(width).Render(sql)
		return strings.Split(highlightSQL(wrapped, th), "\n")
	}

	switch t.Kind {
	case app.InspectQuery:
		q, ok := a.InspectedQuery(t)
		if !ok {
			return gone(fmt.Sprintf("PID %d", t.PID))
		}
		started := "-"
		if q.QueryStart != nil {
			started = q.QueryStart.Format("2006-01-02 15:04:05")
		}
		lines := fields(cfg, []field{
			{"PID", strconv.Itoa(int(q.PID))},
			{"User", str(q.Usename)},
			{"Database", str(q.Datname)},
			{"State", str(q.State)},
			{"Wait", strings.Trim(str(q.WaitEventType)+":"+str(q.WaitEvent), ":")},
			{"Duration", formatDuration(q.DurationSecs)},
			{"Started", started},
			{"Backend", str(q.BackendType)},
		})
		lines = append(lines, "")
		lines = append(lines, wrapSQL(str(q.Query))...)
		hint := "y copy · esc close"
		if !a.IsReplay() {
			hint = "y copy · C cancel · K kill · esc close"
		}
		return fmt.Sprintf("Query PID %d", q.PID), lines, hint

	case app.InspectIndex:
		idx, ok := a.InspectedIndex(t)
		if !ok {
			return gone("Index " + t.Name)
		}
		lines := fields(cfg, []field{
			{"Index", idx.Key()},
			{"Table", idx.TableName},
			{"Size", formatBytes(idx.IndexSizeBytes)},
			{"Scans", formatCount(idx.IdxScan)},
			{"Tuples read", formatCount(idx.IdxTupRead)},
			{"Tuples fetched", formatCount(idx.IdxTupFetch)},
			{"Bloat", bloat(idx.BloatBytes, idx.BloatPct)},
			{"Bloat source", string(idx.BloatSource)},
		})
		lines = append(lines, "")
		lines = append(lines, wrapSQL(idx.IndexDefinition)...)
		return "Index " + idx.IndexName, lines, "y copy · esc close"

	case app.InspectStatement:
		s, ok := a.InspectedStatement(t)
		if !ok {
			return gone(fmt.Sprintf("Statement %d", t.QueryID))
		}
		lines := fields(cfg, []field{
			{"Query ID", strconv.FormatInt(s.QueryID, 10)},
			{"Calls", formatCount(s.Calls)},
			{"Total time", formatMillis(s.TotalExecTime)},
			{"Mean time", formatMillis(s.MeanExecTime)},
			{"Min / Max", formatMillis(s.MinExecTime) + " / " + formatMillis(s.MaxExecTime)},
			{"Stddev", formatMillis(s.StddevExecTime)},
			{"Rows", formatCount(s.Rows)},
			{"Cache hit", formatPct(s.HitRatio * 100)},
			{"Shared read", formatCount(s.SharedBlksRead)},
			{"Shared dirtied", formatCount(s.SharedBlksDirtied)},
			{"Shared written", formatCount(s.SharedBlksWritten)},
			{"Temp read/write", formatCount(s.TempBlksRead) + " / " + formatCount(s.TempBlksWritten)},
			{"I/O read/write", formatMillis(s.BlkReadTime) + " / " + formatMillis(s.BlkWriteTime)},
		})
		lines = append(lines, "")
		lines = append(lines, wrapSQL(s.Query)...)
		return "Statement", lines, "y copy · " + closeHint

	case app.InspectTable:
		s, ok := a.InspectedTable(t)
		if !ok {
			return gone("Table " + t.Name)
		}
		return "Table " + s.Key(), fields(cfg, []field{
			{"Total size", formatBytes(s.TotalSizeBytes)},
			{"Live tuples", formatCount(s.NLiveTup)},
			{"Dead tuples", formatCount(s.NDeadTup)},
			{"Dead ratio", formatPct(s.DeadRatio)},
			{"Seq scans", formatCount(s.SeqScan)},
			{"Index scans", formatCount(s.IdxScan)},
			{"Last vacuum", formatTime(s.LastVacuum)},
			{"Last autovacuum", formatTime(s.LastAutovacuum)},
			{"Last analyze", formatTime(s.LastAnalyze)},
			{"Bloat", bloat(s.BloatBytes, s.BloatPct)},
			{"Bloat source", string(s.BloatSource)},
		}), closeHint

	case app.InspectReplication:
		r, ok := a.InspectedReplication(t)
		if !ok {
			return gone(fmt.Sprintf("Replica PID %d", t.PID))
		}
		return fmt.Sprintf("Replication PID %d", r.PID), fields(cfg, []field{
			{"User", str(r.Usename)},
			{"Application", str(r.ApplicationName)},
			{"Client", str(r.ClientAddr)},
			{"State", str(r.State)},
			{"Sync state", str(r.SyncState)},
			{"Sent LSN", str(r.SentLSN)},
			{"Replay LSN", str(r.ReplayLSN)},
			{"Write lag", formatLag(r.WriteLagSecs)},
			{"Flush lag", formatLag(r.FlushLagSecs)},
			{"Replay lag", formatLag(r.ReplayLagSecs)},
		}), closeHint

	case app.InspectBlocking:
		b, ok := a.InspectedBlocking(t)
		if !ok {
			return gone(fmt.Sprintf("Blocked PID %d", t.PID))
		}
		lines := fields(cfg, []field{
			{"Blocked PID", strconv.Itoa(int(b.BlockedPID))},
			{"Blocked user", str(b.BlockedUser)},
			{"Waiting", formatDuration(b.BlockedDurationSecs)},
			{"Blocker PID", strconv.Itoa(int(b.BlockerPID))},
			{"Blocker user", str(b.BlockerUser)},
			{"Blocker state", str(b.BlockerState)},
		})
		lines = append(lines, "", "Blocked query:")
		lines = append(lines, wrapSQL(str(b.BlockedQuery))...)
		lines = append(lines, "", "Blocker query:")
		lines = append(lines, wrapSQL(str(b.BlockerQuery))...)
		return fmt.Sprintf("Lock wait on PID %d", b.BlockedPID), lines, closeHint

	case app.InspectVacuum:
		v, ok := a.InspectedVacuum(t)
		if !ok {
			return gone(fmt.Sprintf("Vacuum PID %d", t.PID))
		}
		return fmt.Sprintf("Vacuum PID %d", v.PID), fields(cfg, []field{
			{"Database", str(v.Datname)},
			{"Table", v.TableName},
			{"Phase", v.Phase},
			{"Heap blocks", formatCount(v.HeapBlksVacuumed) + " / " + formatCount(v.HeapBlksTotal)},
			{"Progress", formatPct(v.ProgressPct)},
			{"Dead tuples", formatCount(v.NumDeadTuples)},
		}), closeHint

	case app.InspectWraparound:
		w, ok := a.InspectedWraparound(t)
		if !ok {
			return gone("Database " + t.Name)
		}
		return "Wraparound " + w.Datname, fields(cfg, []field{
			{"XID age", formatCount(int64(w.XIDAge))},
			{"XIDs remaining", formatCount(w.XIDsRemaining)},
			{"Towards wraparound", formatPct(w.PctTowardsWraparound)},
		}), closeHint

	case app.InspectSetting:
		s, ok := a.InspectedSetting(t)
		if !ok {
			return gone("Setting " + t.Name)
		}
		return "Setting " + s.Name, fields(cfg, []field{
			{"Value", s.Setting},
			{"Unit", str(s.Unit)},
			{"Category", s.Category},
			{"Context", s.Context},
			{"Source", s.Source},
			{"Pending restart", strconv.FormatBool(s.PendingRestart)},
			{"Description", s.ShortDesc},
		}), closeHint

	case app.InspectExtension:
		e, ok := a.InspectedExtension(t)
		if !ok {
			return gone("Extension " + t.Name)
		}
		return "Extension " + e.Name, fields(cfg, []field{
			{"Version", e.Version},
			{"Schema", e.Schema},
			{"Relocatable", strconv.FormatBool(e.Relocatable)},
			{"Description", str(e.Description)},
		}), closeHint
	}
	return "Inspect", nil, closeHint
}

func renderConfirm(a *app.App, cfg theme.Config, width int) string {
	th := cfg.Theme
	c := a.Mode.Confirm
	key := lipgloss.NewStyle().Bold(true).Foreground(th.BorderActive)
	yesNo := key.Render("y") + " confirm · " + key.Render("n") + " abort"

	var title, body string
	border := th.BorderWarn
	switch c.Kind {
	case app.ConfirmCancel:
		title = "Cancel query"
		body = fmt.Sprintf("Cancel the running query of PID %d?\n\n%s", c.PID, yesNo)
	case app.ConfirmKill:
		title, border = "Terminate backend", th.BorderDanger
		body = fmt.Sprintf("Terminate backend PID %d?\nIts connection will be closed.\n\n%s", c.PID, yesNo)
	case app.ConfirmCancelChoice, app.ConfirmKillChoice:
		verb := "Cancel"
		if c.Kind == app.ConfirmKillChoice {
			verb, border = "Terminate", th.BorderDanger
		}
		title = verb + " which backends?"
		body = fmt.Sprintf("Filter %q matches %d backends.\n\n%s only PID %d\n%s all %d matching\n%s abort",
			a.Filter.Text, len(c.PIDs),
			key.Render("1"), c.PID,
			key.Render("a"), len(c.PIDs),
			key.Render("esc"))
	case app.ConfirmCancelBatch:
		title = "Cancel queries"
		body = fmt.Sprintf("Cancel %d queries?\nPIDs: %s\n\n%s", len(c.PIDs), pidList(c.PIDs, 12), yesNo)
	case app.ConfirmKillBatch:
		title, border = "Terminate backends", th.BorderDanger
		body = fmt.Sprintf("Terminate %d backends?\nPIDs: %s\n\n%s", len(c.PIDs), pidList(c.PIDs, 12), yesNo)
	case app.ConfirmDeleteRecording:
		title, border = "Delete recording", th.BorderDanger
		body = fmt.Sprintf("Delete %s?\n\n%s", c.Path, yesNo)
	case app.ConfirmResetStatements:
		title = "Reset statement statistics"
		body = "Discard all pg_stat_statements counters?\n\n" + yesNo
	}
	return box(cfg, title, body, max(min(width-8, 64), 20), border)
}

// pidList joins up to limit PIDs, summarising the rest.
func pidList(pids []int32, limit int) string {
	parts := make([]string, 0, min(len(pids), limit))
	for i, pid := range pids {
		if i == limit {
			break
		}
		parts = append(parts, strconv.Itoa(int(pid)))
	}
	s := strings.Join(parts, ", ")
	if len(pids) > limit {
		s += fmt.Sprintf(" and %d more", len(pids)-limit)
	}
	return s
}

func renderConfig(a *app.App, cfg theme.Config, width int) string {
	th := cfg.Theme
	label := lipgloss.NewStyle().Width(22)
	var lines []string
	for i, item := range config.Items {
		value := a.Config.Value(item)
		if item == config.ItemRecordingsDir && a.Mode.Kind == app.ModeConfigEditField {
			value = a.FieldInput().View()
		}
		line := label.Render(item.Label()) + "◀ " + value + " ▶"
		if item == config.ItemRecordingsDir {
			line = label.Render(item.Label()) + value
		}
		style := lipgloss.NewStyle().Foreground(th.Foreground)
		if i == a.ConfigSelected {
			style = style.Bold(true).Background(th.HighlightBg).Foreground(th.BorderActive)
		}
		lines = append(lines, style.Render(line))
	}
	hint := "↑↓ select · ←→ adjust · ⏎ edit dir · esc save & close"
	if a.Mode.Kind == app.ModeConfigEditField {
		hint = "⏎ apply · esc cancel · empty for default"
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(th.ForegroundDim).Render(hint))
	return box(cfg, "Configuration", joinLines(lines), max(min(width-8, 80), 30), th.BorderActive)
}

func renderRecordings(a *app.App, cfg theme.Config, width, height int) string {
	th := cfg.Theme
	w := max(min(width-8, 100), 30)
	var lines []string
	if len(a.Recordings.List) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.ForegroundDim).Italic(true).
			Render("No recordings in "+recorder.Dir(a.Config.Recording.Dir)))
	}

	visible := max(height-10, 3)
	offset := 0
	if a.Recordings.Selected >= visible {
		offset = a.Recordings.Selected - visible + 1
	}
	end := min(offset+visible, len(a.Recordings.List))
	for i := offset; i < end; i++ {
		rec := a.Recordings.List[i]
		line := pad(rec.ConnectionDisplay(), w-40) + " " +
			pad(rec.RecordedAt.Local().Format("2006-01-02 15:04"), 17) + " " +
			pad(rec.PGVersionShort(), 10) + " " +
			padLeft(rec.SizeDisplay(), 8)
		style := lipgloss.NewStyle().Foreground(th.Foreground)
		if i == a.Recordings.Selected {
			style = style.Bold(true).Background(th.HighlightBg)
		}
		lines = append(lines, style.Render(line))
	}
	if rec, ok := a.Recordings.Current(); ok {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(th.ForegroundDim).Render(rec.Age()+" · "+rec.Path))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(th.ForegroundDim).Render("⏎ replay · d delete · esc close"))
	return box(cfg, fmt.Sprintf("Recordings (%d)", len(a.Recordings.List)), joinLines(lines), w, th.BorderActive)
}
