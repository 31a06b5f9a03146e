package app

import "fmt"

// ActionKind is a side-effecting intent the runtime executes for the App.
type ActionKind int

const (
	ActionCancelQuery ActionKind = iota
	ActionTerminateBackend
	ActionCancelQueries
	ActionTerminateBackends
	ActionForceRefresh
	ActionRefreshBloat
	ActionSaveConfig
	ActionRefreshIntervalChanged
	ActionResetStatStatements
)

// AppAction is one queued intent. PID is set for single-backend actions,
// PIDs for batches.
type AppAction struct {
	Kind ActionKind
	PID  int32
	PIDs []int32
}

func (a AppAction) String() string {
	switch a.Kind {
	case ActionCancelQuery:
		return fmt.Sprintf("cancel PID %d", a.PID)
	case ActionTerminateBackend:
		return fmt.Sprintf("terminate PID %d", a.PID)
	case ActionCancelQueries:
		return fmt.Sprintf("cancel %d queries", len(a.PIDs))
	case ActionTerminateBackends:
		return fmt.Sprintf("terminate %d backends", len(a.PIDs))
	case ActionForceRefresh:
		return "refresh"
	case ActionRefreshBloat:
		return "bloat refresh"
	case ActionSaveConfig:
		return "save config"
	case ActionRefreshIntervalChanged:
		return "refresh interval change"
	case ActionResetStatStatements:
		return "statement reset"
	}
	return "unknown action"
}

// idempotent actions have no payload; a second copy queued behind the first
// has no extra effect.
func (a AppAction) idempotent() bool {
	switch a.Kind {
	case ActionForceRefresh, ActionRefreshBloat, ActionSaveConfig,
		ActionRefreshIntervalChanged, ActionResetStatStatements:
		return true
	}
	return false
}

// ActionQueueSize bounds the pending action FIFO.
const ActionQueueSize = 4

// ActionQueue is a bounded FIFO of pending actions.
//
// Idempotent actions already queued are coalesced. When the queue is full the
// incoming action is rejected; queued actions are never evicted.
type ActionQueue struct {
	items []AppAction
}

// Push enqueues a and reports whether it was accepted (or coalesced).
func (q *ActionQueue) Push(a AppAction) bool {
	if a.idempotent() {
		for _, queued := range q.items {
			if queued.Kind == a.Kind {
				return true
			}
		}
	}
	if len(q.items) >= ActionQueueSize {
		return false
	}
	q.items = append(q.items, a)
	return true
}

// Peek returns the oldest action without removing it.
func (q *ActionQueue) Peek() (AppAction, bool) {
	if len(q.items) == 0 {
		return AppAction{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the oldest action.
func (q *ActionQueue) Pop() (AppAction, bool) {
	a, ok := q.Peek()
	if ok {
		q.items = q.items[1:]
	}
	return a, ok
}

func (q *ActionQueue) Len() int { return len(q.items) }
