package models

import "time"

// Snapshot is one point-in-time read of the monitored server.
// It is replaced wholesale on every refresh; only the bloat fields of
// TableStat and IndexInfo survive from one snapshot to the next.
type Snapshot struct {
	Timestamp           time.Time          `json:"timestamp"`
	ActiveQueries       []ActiveQuery      `json:"active_queries"`
	WaitEvents          []WaitEventCount   `json:"wait_events"`
	BlockingInfo        []BlockingInfo     `json:"blocking_info"`
	BufferCache         BufferCacheStats   `json:"buffer_cache"`
	Summary             ActivitySummary    `json:"summary"`
	TableStats          []TableStat        `json:"table_stats"`
	Replication         []ReplicationInfo  `json:"replication"`
	VacuumProgress      []VacuumProgress   `json:"vacuum_progress"`
	Wraparound          []WraparoundInfo   `json:"wraparound"`
	Indexes             []IndexInfo        `json:"indexes"`
	StatStatements      []StatStatement    `json:"stat_statements"`
	StatStatementsError string             `json:"stat_statements_error,omitempty"`
	Extensions          DetectedExtensions `json:"extensions"`
	DBSize              int64              `json:"db_size"`
	CheckpointStats     *CheckpointStats   `json:"checkpoint_stats,omitempty"`
	WalStats            *WalStats          `json:"wal_stats,omitempty"`
	DBStats             *DatabaseStats     `json:"db_stats,omitempty"`
}

// ActiveQuery is a client backend row from pg_stat_activity.
type ActiveQuery struct {
	PID           int32      `json:"pid" db:"pid"`
	Usename       *string    `json:"usename" db:"usename"`
	Datname       *string    `json:"datname" db:"datname"`
	State         *string    `json:"state" db:"state"`
	WaitEventType *string    `json:"wait_event_type" db:"wait_event_type"`
	WaitEvent     *string    `json:"wait_event" db:"wait_event"`
	QueryStart    *time.Time `json:"query_start" db:"query_start"`
	DurationSecs  float64    `json:"duration_secs" db:"duration_secs"`
	Query         *string    `json:"query" db:"query"`
	BackendType   *string    `json:"backend_type" db:"backend_type"`
}

// WaitEventCount counts active backends per wait event.
type WaitEventCount struct {
	WaitEventType string `json:"wait_event_type" db:"wait_event_type"`
	WaitEvent     string `json:"wait_event" db:"wait_event"`
	Count         int64  `json:"count" db:"count"`
}

// BlockingInfo pairs a blocked backend with one of its blockers.
type BlockingInfo struct {
	BlockedPID          int32   `json:"blocked_pid" db:"blocked_pid"`
	BlockedUser         *string `json:"blocked_user" db:"blocked_user"`
	BlockedQuery        *string `json:"blocked_query" db:"blocked_query"`
	BlockedDurationSecs float64 `json:"blocked_duration_secs" db:"blocked_duration_secs"`
	BlockerPID          int32   `json:"blocker_pid" db:"blocker_pid"`
	BlockerUser         *string `json:"blocker_user" db:"blocker_user"`
	BlockerQuery        *string `json:"blocker_query" db:"blocker_query"`
	BlockerState        *string `json:"blocker_state" db:"blocker_state"`
}

type BufferCacheStats struct {
	BlksHit  int64   `json:"blks_hit" db:"blks_hit"`
	BlksRead int64   `json:"blks_read" db:"blks_read"`
	HitRatio float64 `json:"hit_ratio" db:"hit_ratio"`
}

type ActivitySummary struct {
	ActiveQueryCount       int64    `json:"active_query_count" db:"active_query_count"`
	IdleInTransactionCount int64    `json:"idle_in_transaction_count" db:"idle_in_transaction_count"`
	TotalBackends          int64    `json:"total_backends" db:"total_backends"`
	LockCount              int64    `json:"lock_count" db:"lock_count"`
	WaitingCount           int64    `json:"waiting_count" db:"waiting_count"`
	OldestXactSecs         *float64 `json:"oldest_xact_secs" db:"oldest_xact_secs"`
	AutovacuumCount        int64    `json:"autovacuum_count" db:"autovacuum_count"`
}

// TableStat is a row of pg_stat_user_tables plus on-demand bloat estimates.
type TableStat struct {
	Schemaname     string     `json:"schemaname" db:"schemaname"`
	Relname        string     `json:"relname" db:"relname"`
	TotalSizeBytes int64      `json:"total_size_bytes" db:"total_size_bytes"`
	SeqScan        int64      `json:"seq_scan" db:"seq_scan"`
	IdxScan        int64      `json:"idx_scan" db:"idx_scan"`
	NLiveTup       int64      `json:"n_live_tup" db:"n_live_tup"`
	NDeadTup       int64      `json:"n_dead_tup" db:"n_dead_tup"`
	DeadRatio      float64    `json:"dead_ratio" db:"dead_ratio"`
	LastVacuum     *time.Time `json:"last_vacuum" db:"last_vacuum"`
	LastAutovacuum *time.Time `json:"last_autovacuum" db:"last_autovacuum"`
	LastAnalyze    *time.Time `json:"last_analyze" db:"last_analyze"`

	BloatBytes  *int64      `json:"bloat_bytes,omitempty" db:"-"`
	BloatPct    *float64    `json:"bloat_pct,omitempty" db:"-"`
	BloatSource BloatSource `json:"bloat_source,omitempty" db:"-"`
}

// Key identifies the table across snapshots.
func (t TableStat) Key() string {
	return t.Schemaname + "." + t.Relname
}

type ReplicationInfo struct {
	PID             int32    `json:"pid" db:"pid"`
	Usename         *string  `json:"usename" db:"usename"`
	ApplicationName *string  `json:"application_name" db:"application_name"`
	ClientAddr      *string  `json:"client_addr" db:"client_addr"`
	State           *string  `json:"state" db:"state"`
	SentLSN         *string  `json:"sent_lsn" db:"sent_lsn"`
	ReplayLSN       *string  `json:"replay_lsn" db:"replay_lsn"`
	WriteLagSecs    *float64 `json:"write_lag_secs" db:"write_lag_secs"`
	FlushLagSecs    *float64 `json:"flush_lag_secs" db:"flush_lag_secs"`
	ReplayLagSecs   *float64 `json:"replay_lag_secs" db:"replay_lag_secs"`
	SyncState       *string  `json:"sync_state" db:"sync_state"`
}

type VacuumProgress struct {
	PID              int32   `json:"pid" db:"pid"`
	Datname          *string `json:"datname" db:"datname"`
	TableName        string  `json:"table_name" db:"table_name"`
	Phase            string  `json:"phase" db:"phase"`
	HeapBlksTotal    int64   `json:"heap_blks_total" db:"heap_blks_total"`
	HeapBlksVacuumed int64   `json:"heap_blks_vacuumed" db:"heap_blks_vacuumed"`
	ProgressPct      float64 `json:"progress_pct" db:"progress_pct"`
	NumDeadTuples    int64   `json:"num_dead_tuples" db:"num_dead_tuples"`
}

type WraparoundInfo struct {
	Datname              string  `json:"datname" db:"datname"`
	XIDAge               int32   `json:"xid_age" db:"xid_age"`
	XIDsRemaining        int64   `json:"xids_remaining" db:"xids_remaining"`
	PctTowardsWraparound float64 `json:"pct_towards_wraparound" db:"pct_towards_wraparound"`
}

// IndexInfo is a row of pg_stat_user_indexes plus on-demand bloat estimates.
type IndexInfo struct {
	Schemaname      string `json:"schemaname" db:"schemaname"`
	TableName       string `json:"table_name" db:"table_name"`
	IndexName       string `json:"index_name" db:"index_name"`
	IndexSizeBytes  int64  `json:"index_size_bytes" db:"index_size_bytes"`
	IdxScan         int64  `json:"idx_scan" db:"idx_scan"`
	IdxTupRead      int64  `json:"idx_tup_read" db:"idx_tup_read"`
	IdxTupFetch     int64  `json:"idx_tup_fetch" db:"idx_tup_fetch"`
	IndexDefinition string `json:"index_definition" db:"index_definition"`

	BloatBytes  *int64      `json:"bloat_bytes,omitempty" db:"-"`
	BloatPct    *float64    `json:"bloat_pct,omitempty" db:"-"`
	BloatSource BloatSource `json:"bloat_source,omitempty" db:"-"`
}

// Key identifies the index across snapshots.
func (i IndexInfo) Key() string {
	return i.Schemaname + "." + i.IndexName
}

// StatStatement is a row of pg_stat_statements normalised across server versions.
type StatStatement struct {
	QueryID           int64   `json:"queryid" db:"queryid"`
	Query             string  `json:"query" db:"query"`
	Calls             int64   `json:"calls" db:"calls"`
	TotalExecTime     float64 `json:"total_exec_time" db:"total_exec_time"`
	MinExecTime       float64 `json:"min_exec_time" db:"min_exec_time"`
	MeanExecTime      float64 `json:"mean_exec_time" db:"mean_exec_time"`
	MaxExecTime       float64 `json:"max_exec_time" db:"max_exec_time"`
	StddevExecTime    float64 `json:"stddev_exec_time" db:"stddev_exec_time"`
	Rows              int64   `json:"rows" db:"rows"`
	SharedBlksHit     int64   `json:"shared_blks_hit" db:"shared_blks_hit"`
	SharedBlksRead    int64   `json:"shared_blks_read" db:"shared_blks_read"`
	SharedBlksDirtied int64   `json:"shared_blks_dirtied" db:"shared_blks_dirtied"`
	SharedBlksWritten int64   `json:"shared_blks_written" db:"shared_blks_written"`
	TempBlksRead      int64   `json:"temp_blks_read" db:"temp_blks_read"`
	TempBlksWritten   int64   `json:"temp_blks_written" db:"temp_blks_written"`
	BlkReadTime       float64 `json:"blk_read_time" db:"blk_read_time"`
	BlkWriteTime      float64 `json:"blk_write_time" db:"blk_write_time"`
	HitRatio          float64 `json:"hit_ratio" db:"hit_ratio"`
}

type CheckpointStats struct {
	CheckpointsTimed    int64   `json:"checkpoints_timed" db:"checkpoints_timed"`
	CheckpointsReq      int64   `json:"checkpoints_req" db:"checkpoints_req"`
	CheckpointWriteTime float64 `json:"checkpoint_write_time" db:"checkpoint_write_time"`
	CheckpointSyncTime  float64 `json:"checkpoint_sync_time" db:"checkpoint_sync_time"`
	BuffersCheckpoint   int64   `json:"buffers_checkpoint" db:"buffers_checkpoint"`
	BuffersBackend      int64   `json:"buffers_backend" db:"buffers_backend"`
}

type WalStats struct {
	WalRecords     int64 `json:"wal_records" db:"wal_records"`
	WalFpi         int64 `json:"wal_fpi" db:"wal_fpi"`
	WalBytes       int64 `json:"wal_bytes" db:"wal_bytes"`
	WalBuffersFull int64 `json:"wal_buffers_full" db:"wal_buffers_full"`
}

// DatabaseStats holds the cumulative counters rates are derived from.
type DatabaseStats struct {
	XactCommit   int64 `json:"xact_commit" db:"xact_commit"`
	XactRollback int64 `json:"xact_rollback" db:"xact_rollback"`
	BlksRead     int64 `json:"blks_read" db:"blks_read"`
}

// BloatSource records how a bloat estimate was produced.
type BloatSource string

const (
	BloatPgstattuple BloatSource = "pgstattuple"
	BloatStatistical BloatSource = "statistical"
	BloatNaive       BloatSource = "naive"
)

// BloatEstimate is one entry of a bloat refresh, keyed by schema.name.
type BloatEstimate struct {
	Bytes  int64
	Pct    float64
	Source BloatSource
}
