package app

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/history"
	"github.com/rebeliceyang/pgglance/internal/models"
	"github.com/rebeliceyang/pgglance/internal/recorder"
)

// clipboardPreviewLen is how much of a copied text the status line echoes.
const clipboardPreviewLen = 40

// App is the aggregate root of the dashboard. It is owned by the runtime loop
// and never touched from another goroutine; the renderer only reads it.
type App struct {
	Running bool
	Paused  bool

	Snapshot *models.Snapshot
	Mode     ViewMode
	Panel    BottomPanel
	Panels   PanelStates
	Metrics  *history.Metrics

	ServerInfo          models.ServerInfo
	Connection          models.ConnectionInfo
	RefreshIntervalSecs int

	// Feedback
	LastError    string
	Status       string
	BloatLoading bool
	SpinnerFrame int

	Config         *config.Config
	ConfigSelected int
	fieldInput     textinput.Model

	Filter      FilterState
	filterInput textinput.Model

	Replay        *ReplayState
	OverlayScroll int
	Recordings    RecordingsBrowser

	actions ActionQueue
	copy    func(string) error
}

// PanelStates holds one cursor/sort state per data panel.
type PanelStates struct {
	Queries     TableViewState[QuerySort]
	Indexes     TableViewState[IndexSort]
	Statements  TableViewState[StatementSort]
	Tables      TableViewState[TableSort]
	Replication TableViewState[Unsorted]
	Blocking    TableViewState[Unsorted]
	Vacuum      TableViewState[Unsorted]
	Wraparound  TableViewState[Unsorted]
	Settings    TableViewState[Unsorted]
	Extensions  TableViewState[Unsorted]
}

func newPanelStates() PanelStates {
	return PanelStates{
		Queries:     newTableView(QuerySortDuration),
		Indexes:     newTableView(IndexSortScans),
		Statements:  newTableView(StmtSortTotalTime),
		Tables:      newTableView(TableSortDeadTuples),
		Replication: newTableView(Unsorted{}),
		Blocking:    newTableView(Unsorted{}),
		Vacuum:      newTableView(Unsorted{}),
		Wraparound:  newTableView(Unsorted{}),
		Settings:    newTableView(Unsorted{}),
		Extensions:  newTableView(Unsorted{}),
	}
}

// FilterState is the fuzzy filter of the active panel. Active is set only once
// the filter overlay is confirmed; while typing the filter applies as a preview.
type FilterState struct {
	Text   string
	Active bool
}

func (f *FilterState) clear() {
	f.Text = ""
	f.Active = false
}

// ReplayState is the playback cursor shown while replaying a recording.
// Position is 1-based for display.
type ReplayState struct {
	Filename string
	Position int
	Total    int
	Speed    float64
	Playing  bool
}

// RecordingsBrowser backs the recordings overlay. PendingPath, once set,
// asks the runtime to leave live mode and replay that file.
type RecordingsBrowser struct {
	List        []recorder.RecordingInfo
	Selected    int
	PendingPath string

	// configRefreshSecs is the configured refresh interval when the replay
	// was launched.
	configRefreshSecs int
}

// Current returns the highlighted recording.
func (r *RecordingsBrowser) Current() (recorder.RecordingInfo, bool) {
	if r.Selected < 0 || r.Selected >= len(r.List) {
		return recorder.RecordingInfo{}, false
	}
	return r.List[r.Selected], true
}

// New creates the App for live monitoring.
func New(conn models.ConnectionInfo, refreshSecs, historyLen int, cfg *config.Config, info models.ServerInfo) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}

	filterInput := textinput.New()
	filterInput.Prompt = "/"
	fieldInput := textinput.New()
	fieldInput.Prompt = ""

	return &App{
		Running:             true,
		Mode:                normalMode(),
		Panel:               PanelQueries,
		Panels:              newPanelStates(),
		Metrics:             history.NewMetrics(historyLen),
		ServerInfo:          info,
		Connection:          conn,
		RefreshIntervalSecs: refreshSecs,
		Config:              cfg,
		filterInput:         filterInput,
		fieldInput:          fieldInput,
		copy:                clipboard.WriteAll,
	}
}

// NewReplay creates the App for replaying a recording. Live polling is off.
func NewReplay(conn models.ConnectionInfo, historyLen int, cfg *config.Config, info models.ServerInfo, filename string, total int) *App {
	a := New(conn, 0, historyLen, cfg, info)
	a.Replay = &ReplayState{
		Filename: filename,
		Total:    total,
		Speed:    1.0,
	}
	return a
}

// IsReplay reports whether the App is showing a recording.
func (a *App) IsReplay() bool {
	return a.Replay != nil
}

// Update installs a new snapshot. Bloat estimates of tables and indexes still
// present are carried over from the previous snapshot; everything else is
// replaced. Clears the error banner.
func (a *App) Update(snap *models.Snapshot) {
	a.Metrics.Push(snap)

	if a.Snapshot != nil {
		carryBloat(a.Snapshot, snap)
	}

	a.Snapshot = snap
	a.LastError = ""
	a.clampSelections()
}

func carryBloat(prev, next *models.Snapshot) {
	tables := make(map[string]models.TableStat)
	for _, t := range prev.TableStats {
		if t.BloatPct != nil {
			tables[t.Key()] = t
		}
	}
	for i := range next.TableStats {
		if old, ok := tables[next.TableStats[i].Key()]; ok {
			next.TableStats[i].BloatBytes = old.BloatBytes
			next.TableStats[i].BloatPct = old.BloatPct
			next.TableStats[i].BloatSource = old.BloatSource
		}
	}

	indexes := make(map[string]models.IndexInfo)
	for _, idx := range prev.Indexes {
		if idx.BloatPct != nil {
			indexes[idx.Key()] = idx
		}
	}
	for i := range next.Indexes {
		if old, ok := indexes[next.Indexes[i].Key()]; ok {
			next.Indexes[i].BloatBytes = old.BloatBytes
			next.Indexes[i].BloatPct = old.BloatPct
			next.Indexes[i].BloatSource = old.BloatSource
		}
	}
}

// UpdateError shows msg in the error banner. The snapshot is kept.
func (a *App) UpdateError(msg string) {
	a.LastError = msg
}

// ApplyBloat writes fresh bloat estimates, keyed by schema.name, into the
// current snapshot.
func (a *App) ApplyBloat(tables, indexes map[string]models.BloatEstimate) {
	a.BloatLoading = false
	if a.Snapshot == nil {
		return
	}
	for i := range a.Snapshot.TableStats {
		t := &a.Snapshot.TableStats[i]
		if est, ok := tables[t.Key()]; ok {
			t.BloatBytes = &est.Bytes
			t.BloatPct = &est.Pct
			t.BloatSource = est.Source
		}
	}
	for i := range a.Snapshot.Indexes {
		idx := &a.Snapshot.Indexes[i]
		if est, ok := indexes[idx.Key()]; ok {
			idx.BloatBytes = &est.Bytes
			idx.BloatPct = &est.Pct
			idx.BloatSource = est.Source
		}
	}
}

// Tick advances the spinner shown while bloat estimates load.
func (a *App) Tick() {
	if a.BloatLoading {
		a.SpinnerFrame++
	}
}

// queue adds an action to the pending FIFO, reporting a rejection on the
// status line.
func (a *App) queue(action AppAction) bool {
	if !a.actions.Push(action) {
		a.Status = "Action queue full, dropped " + action.String()
		return false
	}
	return true
}

// PeekAction returns the oldest pending action without removing it.
func (a *App) PeekAction() (AppAction, bool) {
	return a.actions.Peek()
}

// PopAction removes the oldest pending action.
func (a *App) PopAction() (AppAction, bool) {
	return a.actions.Pop()
}

// PendingActions returns how many actions wait for the runtime.
func (a *App) PendingActions() int {
	return a.actions.Len()
}

// FilterInput is the text field shown by the filter overlay.
func (a *App) FilterInput() textinput.Model {
	return a.filterInput
}

// FieldInput is the text field shown while editing a config value.
func (a *App) FieldInput() textinput.Model {
	return a.fieldInput
}

func (a *App) copyToClipboard(text string) {
	if err := a.copy(text); err != nil {
		a.Status = "Clipboard error: " + err.Error()
		return
	}
	preview := []rune(text)
	suffix := ""
	if len(preview) > clipboardPreviewLen {
		preview = preview[:clipboardPreviewLen]
		suffix = "..."
	}
	a.Status = "Copied: " + string(preview) + suffix
}

// RefreshRecordings reloads the recordings list, keeping the cursor in range.
func (a *App) RefreshRecordings() {
	a.Recordings.List = recorder.List(recorder.Dir(a.Config.Recording.Dir))
	if a.Recordings.Selected >= len(a.Recordings.List) {
		a.Recordings.Selected = max(len(a.Recordings.List)-1, 0)
	}
}

// ReplayStepped syncs the replay cursor after the session moved to the
// 0-based position pos.
func (a *App) ReplayStepped(snap *models.Snapshot, pos int) {
	a.Update(snap)
	if a.Replay != nil {
		a.Replay.Position = pos + 1
	}
}

// ResumeLive returns to live monitoring after a replay launched from the
// recordings overlay. A refresh interval changed in the replay's config
// overlay takes effect here; the result reports whether it did.
func (a *App) ResumeLive() bool {
	a.Running = true
	a.Panel = PanelQueries
	a.Mode = normalMode()
	a.Replay = nil
	a.Filter.clear()
	a.filterInput.SetValue("")
	a.clampSelections()

	if a.Config == nil {
		return false
	}
	secs := a.Config.Monitor.RefreshIntervalSecs
	if secs == a.Recordings.configRefreshSecs || secs == a.RefreshIntervalSecs {
		return false
	}
	a.RefreshIntervalSecs = secs
	return true
}
