package queries

import (
	"context"
	"time"

	"github.com/rebeliceyang/pgglance/internal/models"
)

// FetchSnapshot reads one Snapshot. The sub-queries run one after another
// on db, which must be a single connection: the activity queries exclude
// pg_backend_pid() and so only hide the backend they run on.
//
// Table and index statistics degrade to empty lists (relations may be
// dropped mid-query), statement statistics report their failure in
// StatStatementsError and the optional server counters are left nil. Any
// other failure fails the whole snapshot.
func FetchSnapshot(ctx context.Context, db DB, ext models.DetectedExtensions, version int) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Timestamp:  time.Now(),
		Extensions: ext,
	}

	steps := []func() error{
		func() (err error) {
			snap.ActiveQueries, err = collect[models.ActiveQuery](ctx, db, activeQueriesSQL)
			return wrap("active queries", err)
		},
		func() (err error) {
			snap.WaitEvents, err = collect[models.WaitEventCount](ctx, db, waitEventsSQL)
			return wrap("wait events", err)
		},
		func() (err error) {
			snap.BlockingInfo, err = collect[models.BlockingInfo](ctx, db, blockingSQL)
			return wrap("blocking info", err)
		},
		func() (err error) {
			snap.BufferCache, err = collectOne[models.BufferCacheStats](ctx, db, bufferCacheSQL)
			return wrap("buffer cache", err)
		},
		func() (err error) {
			snap.Summary, err = collectOne[models.ActivitySummary](ctx, db, activitySummarySQL)
			return wrap("activity summary", err)
		},
		func() error {
			snap.TableStats, _ = collect[models.TableStat](ctx, db, tableStatsSQL)
			return nil
		},
		func() (err error) {
			snap.Replication, err = collect[models.ReplicationInfo](ctx, db, replicationSQL)
			return wrap("replication", err)
		},
		func() (err error) {
			snap.VacuumProgress, err = collect[models.VacuumProgress](ctx, db, vacuumProgressSQL)
			return wrap("vacuum progress", err)
		},
		func() (err error) {
			snap.Wraparound, err = collect[models.WraparoundInfo](ctx, db, wraparoundSQL)
			return wrap("wraparound", err)
		},
		func() error {
			snap.Indexes, _ = collect[models.IndexInfo](ctx, db, indexesSQL)
			return nil
		},
		func() error {
			snap.StatStatements, snap.StatStatementsError = FetchStatStatements(ctx, db, ext, version)
			return nil
		},
		func() error {
			return wrap("database size", db.QueryRow(ctx, dbSizeSQL).Scan(&snap.DBSize))
		},
		func() error {
			if cs, err := collectOne[models.CheckpointStats](ctx, db, checkpointStatsSQL(version)); err == nil {
				snap.CheckpointStats = &cs
			}
			return nil
		},
		func() error {
			if version < 14 {
				return nil
			}
			if ws, err := collectOne[models.WalStats](ctx, db, walStatsSQL); err == nil {
				snap.WalStats = &ws
			}
			return nil
		},
		func() error {
			if ds, err := collectOne[models.DatabaseStats](ctx, db, databaseStatsSQL); err == nil {
				snap.DBStats = &ds
			}
			return nil
		},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
