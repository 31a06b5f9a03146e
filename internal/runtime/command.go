// Package runtime drives the App: it multiplexes terminal input, worker
// results and timers on one goroutine and hands database work to a worker.
package runtime

import (
	"context"
	"log/slog"

	"github.com/rebeliceyang/pgglance/internal/db/queries"
	"github.com/rebeliceyang/pgglance/internal/models"
)

// CommandKind is a unit of work for the worker.
type CommandKind int

const (
	CmdFetchSnapshot CommandKind = iota
	CmdCancelQuery
	CmdTerminateBackend
	CmdCancelQueries
	CmdTerminateBackends
	CmdRefreshBloat
	CmdResetStatStatements
)

func (k CommandKind) String() string {
	switch k {
	case CmdFetchSnapshot:
		return "fetch_snapshot"
	case CmdCancelQuery:
		return "cancel_query"
	case CmdTerminateBackend:
		return "terminate_backend"
	case CmdCancelQueries:
		return "cancel_queries"
	case CmdTerminateBackends:
		return "terminate_backends"
	case CmdRefreshBloat:
		return "refresh_bloat"
	case CmdResetStatStatements:
		return "reset_stat_statements"
	}
	return "unknown"
}

// Command carries a monotonically increasing ID assigned by the loop.
type Command struct {
	ID   uint64
	Kind CommandKind
	PID  int32
	PIDs []int32
}

// Outcome is the result of signalling one backend.
type Outcome struct {
	PID int32
	OK  bool
	Err error
}

// Result answers the Command with the same ID.
type Result struct {
	ID       uint64
	Kind     CommandKind
	Snapshot *models.Snapshot
	Bloat    queries.Bloat
	Outcomes []Outcome
	Err      error
}

// Executor performs the database side of each command. *queries.Client
// implements it.
type Executor interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
	FetchBloat(ctx context.Context) (queries.Bloat, error)
	CancelBackend(ctx context.Context, pid int32) (bool, error)
	TerminateBackend(ctx context.Context, pid int32) (bool, error)
	ResetStatStatements(ctx context.Context) error
}

// Worker executes commands one at a time, in arrival order.
type Worker struct {
	exec   Executor
	logger *slog.Logger
}

func NewWorker(exec Executor, logger *slog.Logger) *Worker {
	return &Worker{exec: exec, logger: logger}
}

// Run consumes cmds until it is closed or ctx ends. Results are sent in the
// order commands were received.
func (w *Worker) Run(ctx context.Context, cmds <-chan Command, results chan<- Result) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-cmds:
			if !ok {
				return nil
			}
			res := w.execute(ctx, cmd)
			select {
			case results <- res:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Worker) execute(ctx context.Context, cmd Command) Result {
	res := Result{ID: cmd.ID, Kind: cmd.Kind}
	switch cmd.Kind {
	case CmdFetchSnapshot:
		res.Snapshot, res.Err = w.exec.FetchSnapshot(ctx)
	case CmdRefreshBloat:
		res.Bloat, res.Err = w.exec.FetchBloat(ctx)
	case CmdCancelQuery:
		ok, err := w.exec.CancelBackend(ctx, cmd.PID)
		res.Outcomes, res.Err = []Outcome{{PID: cmd.PID, OK: ok, Err: err}}, err
	case CmdTerminateBackend:
		ok, err := w.exec.TerminateBackend(ctx, cmd.PID)
		res.Outcomes, res.Err = []Outcome{{PID: cmd.PID, OK: ok, Err: err}}, err
	case CmdCancelQueries:
		res.Outcomes = w.each(ctx, cmd.PIDs, w.exec.CancelBackend)
	case CmdTerminateBackends:
		res.Outcomes = w.each(ctx, cmd.PIDs, w.exec.TerminateBackend)
	case CmdResetStatStatements:
		res.Err = w.exec.ResetStatStatements(ctx)
	}
	if res.Err != nil {
		w.logger.Warn("command failed", "id", cmd.ID, "kind", cmd.Kind.String(), "error", res.Err)
	} else {
		w.logger.Debug("command done", "id", cmd.ID, "kind", cmd.Kind.String())
	}
	return res
}

// each signals pids sequentially; a failed call counts as not signalled.
func (w *Worker) each(ctx context.Context, pids []int32, signal func(context.Context, int32) (bool, error)) []Outcome {
	out := make([]Outcome, 0, len(pids))
	for _, pid := range pids {
		ok, err := signal(ctx, pid)
		out = append(out, Outcome{PID: pid, OK: ok && err == nil, Err: err})
	}
	return out
}
