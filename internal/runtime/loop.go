package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/history"
	"github.com/rebeliceyang/pgglance/internal/recorder"
)

const (
	// CommandBuffer is the capacity of the command channel. Enqueueing never
	// blocks; a command that does not fit is dropped.
	CommandBuffer   = 16
	resultBuffer    = 16
	inputBuffer     = 64
	spinnerInterval = 80 * time.Millisecond
)

// Renderer turns the App into a full-screen frame.
type Renderer func(a *app.App, width, height int) string

// Options wires the loop's collaborators. Store, Recorder and Watcher are
// optional. Config is used by replays when the loop has no live App.
type Options struct {
	Config     *config.Config
	Render     Renderer
	SaveConfig func(*config.Config) error
	Store      *history.Store
	Recorder   *recorder.Recorder
	Watcher    *recorder.Watcher
	Logger     *slog.Logger
	Width      int
	Height     int
}

// Loop is the single owner of the App. Nothing else mutates it.
type Loop struct {
	app  *app.App
	opts Options

	input   chan tea.Msg
	cmds    chan Command
	results chan Result
	frames  chan string

	nextID         uint64
	lastSnapshotID uint64
	refresh        *time.Ticker
	width, height  int
	logger         *slog.Logger
}

func NewLoop(a *app.App, opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.SaveConfig == nil {
		opts.SaveConfig = (*config.Config).Save
	}
	return &Loop{
		app:     a,
		opts:    opts,
		input:   make(chan tea.Msg, inputBuffer),
		cmds:    make(chan Command, CommandBuffer),
		results: make(chan Result, resultBuffer),
		frames:  make(chan string, 1),
		width:   opts.Width,
		height:  opts.Height,
		logger:  logger,
	}
}

// Input receives terminal key and resize messages.
func (l *Loop) Input() chan<- tea.Msg { return l.input }

// Commands is consumed by the worker.
func (l *Loop) Commands() <-chan Command { return l.cmds }

// Results is fed by the worker.
func (l *Loop) Results() chan<- Result { return l.results }

// Frames yields the most recent rendered frame; older unread frames are
// replaced.
func (l *Loop) Frames() <-chan string { return l.frames }

func refreshPeriod(secs int) time.Duration {
	return time.Duration(max(secs, 1)) * time.Second
}

// Run drives live monitoring until the App stops running or ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.cmds)

	l.refresh = time.NewTicker(refreshPeriod(l.app.RefreshIntervalSecs))
	defer l.refresh.Stop()
	spinner := time.NewTicker(spinnerInterval)
	defer spinner.Stop()

	var changes <-chan struct{}
	if l.opts.Watcher != nil {
		changes = l.opts.Watcher.Changes()
	}

	l.fetch()
	for {
		l.render(l.app)
		l.drainActions()

		if !l.app.Running {
			path := l.app.Recordings.PendingPath
			if path == "" {
				return nil
			}
			l.app.Recordings.PendingPath = ""
			if err := l.replayFile(ctx, path); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			if l.app.ResumeLive() {
				l.logger.Info("refresh interval changed", "secs", l.app.RefreshIntervalSecs)
			}
			l.refresh.Reset(refreshPeriod(l.app.RefreshIntervalSecs))
			l.fetch()
			continue
		}

		if done := l.step(ctx, spinner.C, changes); done {
			return nil
		}
	}
}

// step waits for one event and applies it. Ready sources are taken in
// priority order: input, results, refresh tick, spinner tick.
func (l *Loop) step(ctx context.Context, spin <-chan time.Time, changes <-chan struct{}) bool {
	select {
	case msg := <-l.input:
		l.handleInput(l.app, msg)
		return false
	default:
	}
	select {
	case res := <-l.results:
		l.apply(res)
		return false
	default:
	}
	select {
	case <-l.refresh.C:
		l.onRefresh()
		return false
	default:
	}
	select {
	case <-spin:
		l.app.Tick()
		return false
	default:
	}

	select {
	case <-ctx.Done():
		return true
	case msg := <-l.input:
		l.handleInput(l.app, msg)
	case res := <-l.results:
		l.apply(res)
	case <-l.refresh.C:
		l.onRefresh()
	case <-spin:
		l.app.Tick()
	case <-changes:
		if l.app.Mode.Kind == app.ModeRecordings {
			l.app.RefreshRecordings()
		}
	}
	return false
}

func (l *Loop) handleInput(a *app.App, msg tea.Msg) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		a.HandleKey(msg)
	case tea.WindowSizeMsg:
		l.width, l.height = msg.Width, msg.Height
	}
}

func (l *Loop) render(a *app.App) {
	if l.opts.Render == nil {
		return
	}
	frame := l.opts.Render(a, l.width, l.height)
	select {
	case <-l.frames:
	default:
	}
	l.frames <- frame
}

func (l *Loop) onRefresh() {
	if !l.app.Paused {
		l.fetch()
	}
}

func (l *Loop) fetch() {
	l.trySend(Command{Kind: CmdFetchSnapshot})
}

// trySend enqueues cmd without blocking, assigning it the next ID.
func (l *Loop) trySend(cmd Command) bool {
	cmd.ID = l.nextID + 1
	select {
	case l.cmds <- cmd:
		l.nextID = cmd.ID
		return true
	default:
		l.logger.Debug("command channel full, dropped", "kind", cmd.Kind.String())
		return false
	}
}

// drainActions turns pending App actions into commands. An action that
// cannot be sent stays at the head of the queue for the next cycle.
func (l *Loop) drainActions() {
	for {
		action, ok := l.app.PeekAction()
		if !ok {
			return
		}
		switch action.Kind {
		case app.ActionSaveConfig:
			l.saveConfig(l.app)
		case app.ActionRefreshIntervalChanged:
			l.refresh.Reset(refreshPeriod(l.app.RefreshIntervalSecs))
			l.logger.Info("refresh interval changed", "secs", l.app.RefreshIntervalSecs)
		default:
			if !l.trySend(commandFor(action)) {
				return
			}
		}
		l.app.PopAction()
	}
}

func commandFor(a app.AppAction) Command {
	switch a.Kind {
	case app.ActionCancelQuery:
		return Command{Kind: CmdCancelQuery, PID: a.PID}
	case app.ActionTerminateBackend:
		return Command{Kind: CmdTerminateBackend, PID: a.PID}
	case app.ActionCancelQueries:
		return Command{Kind: CmdCancelQueries, PIDs: a.PIDs}
	case app.ActionTerminateBackends:
		return Command{Kind: CmdTerminateBackends, PIDs: a.PIDs}
	case app.ActionRefreshBloat:
		return Command{Kind: CmdRefreshBloat}
	case app.ActionResetStatStatements:
		return Command{Kind: CmdResetStatStatements}
	default:
		return Command{Kind: CmdFetchSnapshot}
	}
}

func (l *Loop) saveConfig(a *app.App) {
	if err := l.opts.SaveConfig(a.Config); err != nil {
		a.Status = "Failed to save config: " + err.Error()
		l.logger.Warn("failed to save config", "error", err)
	}
}

// apply installs a worker result. Snapshot results older than the newest
// applied one are ignored.
func (l *Loop) apply(res Result) {
	a := l.app
	switch res.Kind {
	case CmdFetchSnapshot:
		if res.ID < l.lastSnapshotID {
			l.logger.Debug("stale snapshot ignored", "id", res.ID, "newest", l.lastSnapshotID)
			return
		}
		l.lastSnapshotID = res.ID
		if res.Err != nil {
			a.UpdateError(res.Err.Error())
			return
		}
		if l.opts.Recorder != nil {
			if err := l.opts.Recorder.Record(res.Snapshot); err != nil {
				a.Status = "Recording failed: " + err.Error()
			}
		}
		a.Update(res.Snapshot)

	case CmdRefreshBloat:
		if res.Err != nil {
			a.BloatLoading = false
			a.Status = "Bloat estimation failed: " + res.Err.Error()
			return
		}
		a.ApplyBloat(res.Bloat.Tables, res.Bloat.Indexes)
		a.Status = fmt.Sprintf("Bloat estimates refreshed (%d tables, %d indexes)", len(res.Bloat.Tables), len(res.Bloat.Indexes))

	case CmdCancelQuery, CmdTerminateBackend:
		if len(res.Outcomes) == 0 {
			return
		}
		o := res.Outcomes[0]
		cancel := res.Kind == CmdCancelQuery
		switch {
		case o.Err != nil && cancel:
			a.Status = "Cancel failed: " + o.Err.Error()
		case o.Err != nil:
			a.Status = "Terminate failed: " + o.Err.Error()
		case o.OK && cancel:
			a.Status = fmt.Sprintf("Cancelled query on PID %d", o.PID)
		case o.OK:
			a.Status = fmt.Sprintf("Terminated backend PID %d", o.PID)
		default:
			a.Status = fmt.Sprintf("PID %d not found or already finished", o.PID)
		}
		l.audit(res.Kind, o.PID, o.OK, a.Status)
		if o.OK {
			l.fetch()
		}

	case CmdCancelQueries, CmdTerminateBackends:
		total, succeeded := len(res.Outcomes), 0
		for _, o := range res.Outcomes {
			if o.OK {
				succeeded++
			}
		}
		verb, noun := "Cancelled", "queries"
		if res.Kind == CmdTerminateBackends {
			verb, noun = "Terminated", "backends"
		}
		a.Status = fmt.Sprintf("%s %d/%d %s", verb, succeeded, total, noun)
		if succeeded < total {
			a.Status += fmt.Sprintf(" (%d already finished)", total-succeeded)
		}
		for _, o := range res.Outcomes {
			l.audit(res.Kind, o.PID, o.OK, a.Status)
		}
		l.fetch()

	case CmdResetStatStatements:
		if res.Err != nil {
			a.Status = "Statement reset failed: " + res.Err.Error()
		} else {
			a.Status = "Statement statistics reset"
			l.fetch()
		}
		l.audit(res.Kind, 0, res.Err == nil, a.Status)
	}
}

// audit appends an administrative action to the action log.
func (l *Loop) audit(kind CommandKind, pid int32, ok bool, msg string) {
	if l.opts.Store == nil {
		return
	}
	err := l.opts.Store.Add(history.ActionEntry{
		Connection: l.app.Connection.Display(),
		Action:     kind.String(),
		PID:        pid,
		Success:    ok,
		Message:    msg,
		ExecutedAt: time.Now(),
	})
	if err != nil {
		l.logger.Warn("failed to write action log", "error", err)
	}
}
