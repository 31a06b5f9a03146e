package queries

import (
	"context"
	"fmt"
)

// CancelBackend cancels the running query of pid. False means no such
// backend (or it finished first).
func CancelBackend(ctx context.Context, db DB, pid int32) (bool, error) {
	var ok bool
	if err := db.QueryRow(ctx, cancelBackendSQL, pid).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to cancel backend %d: %w", pid, err)
	}
	return ok, nil
}

// TerminateBackend terminates the backend pid.
func TerminateBackend(ctx context.Context, db DB, pid int32) (bool, error) {
	var ok bool
	if err := db.QueryRow(ctx, terminateBackendSQL, pid).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to terminate backend %d: %w", pid, err)
	}
	return ok, nil
}

// ResetStatStatements discards all collected statement statistics.
func ResetStatStatements(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, resetStatementsSQL); err != nil {
		return fmt.Errorf("failed to reset pg_stat_statements: %w", err)
	}
	return nil
}
