package queries

import "fmt"

// Row limits embedded in the SQL below.
const (
	MaxActiveQueries  = 100
	MaxBlockingChains = 50
	MaxTableStats     = 30
	MaxStatStatements = 100
)

const activeQueriesSQL = `
SELECT
    pid,
    usename,
    datname,
    state,
    wait_event_type,
    wait_event,
    query_start,
    COALESCE(EXTRACT(EPOCH FROM (clock_timestamp() - query_start))::float8, 0) AS duration_secs,
    query,
    backend_type
FROM pg_stat_activity
WHERE pid <> pg_backend_pid()
  AND state IS NOT NULL
  AND backend_type = 'client backend'
ORDER BY
    CASE state
        WHEN 'active' THEN 0
        WHEN 'idle in transaction' THEN 1
        WHEN 'idle in transaction (aborted)' THEN 2
        ELSE 3
    END,
    duration_secs DESC
LIMIT 100`

const waitEventsSQL = `
SELECT
    COALESCE(wait_event_type, 'CPU/Running') AS wait_event_type,
    COALESCE(wait_event, 'CPU/Running') AS wait_event,
    COUNT(*) AS count
FROM pg_stat_activity
WHERE pid <> pg_backend_pid()
  AND state = 'active'
  AND backend_type = 'client backend'
GROUP BY wait_event_type, wait_event
ORDER BY count DESC`

const blockingSQL = `
SELECT
    blocked.pid AS blocked_pid,
    blocked.usename AS blocked_user,
    blocked.query AS blocked_query,
    COALESCE(EXTRACT(EPOCH FROM (clock_timestamp() - blocked.query_start))::float8, 0) AS blocked_duration_secs,
    blocker.pid AS blocker_pid,
    blocker.usename AS blocker_user,
    blocker.query AS blocker_query,
    blocker.state AS blocker_state
FROM pg_stat_activity AS blocked
JOIN LATERAL unnest(pg_blocking_pids(blocked.pid)) AS blocker_pid ON TRUE
JOIN pg_stat_activity AS blocker ON blocker.pid = blocker_pid
WHERE blocked.pid <> pg_backend_pid()
  AND cardinality(pg_blocking_pids(blocked.pid)) > 0
ORDER BY blocked_duration_secs DESC
LIMIT 50`

const bufferCacheSQL = `
SELECT
    COALESCE(blks_hit, 0) AS blks_hit,
    COALESCE(blks_read, 0) AS blks_read,
    CASE
        WHEN COALESCE(blks_hit, 0) + COALESCE(blks_read, 0) = 0 THEN 1.0
        ELSE blks_hit::float8 / (blks_hit + blks_read)
    END::float8 AS hit_ratio
FROM pg_stat_database
WHERE datname = current_database()`

const activitySummarySQL = `
SELECT
    COUNT(*) FILTER (WHERE state = 'active' AND pid <> pg_backend_pid()) AS active_query_count,
    COUNT(*) FILTER (WHERE state = 'idle in transaction') AS idle_in_transaction_count,
    COUNT(*) AS total_backends,
    (SELECT COUNT(*) FROM pg_locks WHERE NOT granted) AS lock_count,
    COUNT(*) FILTER (WHERE wait_event_type = 'Lock') AS waiting_count,
    MAX(EXTRACT(EPOCH FROM (clock_timestamp() - xact_start)))::float8 AS oldest_xact_secs,
    (SELECT COUNT(*) FROM pg_stat_activity WHERE backend_type = 'autovacuum worker') AS autovacuum_count
FROM pg_stat_activity
WHERE backend_type = 'client backend'`

const tableStatsSQL = `
SELECT schemaname, relname,
    COALESCE(pg_total_relation_size(relid), 0) AS total_size_bytes,
    COALESCE(seq_scan, 0) AS seq_scan,
    COALESCE(idx_scan, 0) AS idx_scan,
    COALESCE(n_live_tup, 0) AS n_live_tup,
    COALESCE(n_dead_tup, 0) AS n_dead_tup,
    COALESCE((CASE WHEN n_live_tup > 0 THEN (100.0 * n_dead_tup / n_live_tup) ELSE 0 END)::float8, 0) AS dead_ratio,
    last_vacuum,
    last_autovacuum,
    last_analyze
FROM pg_stat_user_tables ORDER BY n_dead_tup DESC LIMIT 30`

const replicationSQL = `
SELECT pid,
    usename,
    application_name,
    host(client_addr) AS client_addr,
    state::text AS state,
    sent_lsn::text AS sent_lsn,
    replay_lsn::text AS replay_lsn,
    EXTRACT(EPOCH FROM write_lag)::float8 AS write_lag_secs,
    EXTRACT(EPOCH FROM flush_lag)::float8 AS flush_lag_secs,
    EXTRACT(EPOCH FROM replay_lag)::float8 AS replay_lag_secs,
    sync_state::text AS sync_state
FROM pg_stat_replication ORDER BY replay_lag DESC NULLS LAST`

// num_dead_tuples is reported as 0: its column name differs across
// versions and managed providers.
const vacuumProgressSQL = `
SELECT p.pid, a.datname,
    COALESCE(n.nspname || '.' || c.relname, p.relid::text) AS table_name,
    p.phase,
    p.heap_blks_total, p.heap_blks_vacuumed,
    (CASE WHEN p.heap_blks_total > 0 THEN (100.0 * p.heap_blks_vacuumed / p.heap_blks_total) ELSE 0 END)::float8 AS progress_pct,
    0::bigint AS num_dead_tuples
FROM pg_stat_progress_vacuum p
JOIN pg_stat_activity a ON a.pid = p.pid
LEFT JOIN pg_class c ON c.oid = p.relid
LEFT JOIN pg_namespace n ON n.oid = c.relnamespace
ORDER BY p.pid`

const wraparoundSQL = `
SELECT datname::text AS datname,
    age(datfrozenxid) AS xid_age,
    (2147483647 - age(datfrozenxid))::bigint AS xids_remaining,
    round(100.0 * age(datfrozenxid) / 2147483647, 2)::float8 AS pct_towards_wraparound
FROM pg_database WHERE datallowconn
ORDER BY age(datfrozenxid) DESC`

const indexesSQL = `
SELECT
    s.schemaname,
    s.relname AS table_name,
    s.indexrelname AS index_name,
    COALESCE(pg_relation_size(s.indexrelid), 0)::bigint AS index_size_bytes,
    COALESCE(s.idx_scan, 0)::bigint AS idx_scan,
    COALESCE(s.idx_tup_read, 0)::bigint AS idx_tup_read,
    COALESCE(s.idx_tup_fetch, 0)::bigint AS idx_tup_fetch,
    pg_get_indexdef(s.indexrelid) AS index_definition
FROM pg_stat_user_indexes s
ORDER BY pg_relation_size(s.indexrelid) DESC NULLS LAST`

const extensionsSQL = `
SELECT extname::text AS extname, extversion FROM pg_extension
WHERE extname IN ('pg_stat_statements', 'pg_stat_kcache', 'pg_wait_sampling', 'pg_buffercache', 'pgstattuple')`

const serverInfoSQL = `
SELECT
    version(),
    pg_postmaster_start_time(),
    (SELECT setting::bigint FROM pg_settings WHERE name = 'max_connections') AS max_connections`

const settingsSQL = `
SELECT
    name,
    setting,
    unit,
    category,
    short_desc,
    context,
    source,
    COALESCE(pending_restart, false) AS pending_restart
FROM pg_settings
ORDER BY category, name`

const extensionsListSQL = `
SELECT
    e.extname::text AS name,
    e.extversion AS version,
    n.nspname::text AS schema,
    e.extrelocatable AS relocatable,
    a.comment AS description
FROM pg_extension e
JOIN pg_namespace n ON n.oid = e.extnamespace
LEFT JOIN pg_available_extensions a ON a.name = e.extname
ORDER BY e.extname`

const dbSizeSQL = `SELECT pg_database_size(current_database())`

const checkpointStatsSQLV11 = `
SELECT
    COALESCE(checkpoints_timed, 0) AS checkpoints_timed,
    COALESCE(checkpoints_req, 0) AS checkpoints_req,
    COALESCE(checkpoint_write_time, 0) AS checkpoint_write_time,
    COALESCE(checkpoint_sync_time, 0) AS checkpoint_sync_time,
    COALESCE(buffers_checkpoint, 0) AS buffers_checkpoint,
    COALESCE(buffers_backend, 0) AS buffers_backend
FROM pg_stat_bgwriter`

// From 17 the checkpoint counters live in pg_stat_checkpointer.
const checkpointStatsSQLV17 = `
SELECT
    COALESCE(num_timed, 0) AS checkpoints_timed,
    COALESCE(num_requested, 0) AS checkpoints_req,
    COALESCE(write_time, 0) AS checkpoint_write_time,
    COALESCE(sync_time, 0) AS checkpoint_sync_time,
    COALESCE(buffers_written, 0) AS buffers_checkpoint,
    0::bigint AS buffers_backend
FROM pg_stat_checkpointer`

func checkpointStatsSQL(version int) string {
	if version < 17 {
		return checkpointStatsSQLV11
	}
	return checkpointStatsSQLV17
}

// pg_stat_wal exists from 14.
const walStatsSQL = `
SELECT
    COALESCE(wal_records, 0) AS wal_records,
    COALESCE(wal_fpi, 0) AS wal_fpi,
    COALESCE(wal_bytes, 0)::bigint AS wal_bytes,
    COALESCE(wal_buffers_full, 0) AS wal_buffers_full
FROM pg_stat_wal`

const databaseStatsSQL = `
SELECT
    COALESCE(xact_commit, 0) AS xact_commit,
    COALESCE(xact_rollback, 0) AS xact_rollback,
    COALESCE(blks_read, 0) AS blks_read
FROM pg_stat_database
WHERE datname = current_database()`

// statementsColumns names the pg_stat_statements columns that were renamed
// across releases: total_time became total_exec_time in extension 1.8 and
// blk_read_time became shared_blk_read_time in server 17.
type statementsColumns struct {
	timePrefix   string
	blkReadTime  string
	blkWriteTime string
	orderBy      string
}

var (
	statementsV11 = statementsColumns{"", "blk_read_time", "blk_write_time", "total_time"}
	statementsV13 = statementsColumns{"exec_", "blk_read_time", "blk_write_time", "total_exec_time"}
	statementsV17 = statementsColumns{"exec_", "shared_blk_read_time", "shared_blk_write_time", "total_exec_time"}
)

// statementsSQL aliases every variant to the same output columns.
func statementsSQL(c statementsColumns) string {
	return fmt.Sprintf(`SELECT
    COALESCE(queryid, 0) AS queryid,
    query,
    COALESCE(calls, 0) AS calls,
    COALESCE(total_%[1]stime, 0) AS total_exec_time,
    COALESCE(min_%[1]stime, 0) AS min_exec_time,
    COALESCE(mean_%[1]stime, 0) AS mean_exec_time,
    COALESCE(max_%[1]stime, 0) AS max_exec_time,
    COALESCE(stddev_%[1]stime, 0) AS stddev_exec_time,
    COALESCE(rows, 0) AS rows,
    COALESCE(shared_blks_hit, 0) AS shared_blks_hit,
    COALESCE(shared_blks_read, 0) AS shared_blks_read,
    COALESCE(shared_blks_dirtied, 0) AS shared_blks_dirtied,
    COALESCE(shared_blks_written, 0) AS shared_blks_written,
    COALESCE(temp_blks_read, 0) AS temp_blks_read,
    COALESCE(temp_blks_written, 0) AS temp_blks_written,
    COALESCE(%[2]s, 0) AS blk_read_time,
    COALESCE(%[3]s, 0) AS blk_write_time,
    CASE
        WHEN COALESCE(shared_blks_hit, 0) + COALESCE(shared_blks_read, 0) = 0 THEN 1.0
        ELSE COALESCE(shared_blks_hit, 0)::float8 / (COALESCE(shared_blks_hit, 0) + COALESCE(shared_blks_read, 0))
    END::float8 AS hit_ratio
FROM pg_stat_statements
ORDER BY %[4]s DESC
LIMIT %[5]d`, c.timePrefix, c.blkReadTime, c.blkWriteTime, c.orderBy, MaxStatStatements)
}

const statementsCountSQL = `SELECT COUNT(*) FROM pg_stat_statements`

const resetStatementsSQL = `SELECT pg_stat_statements_reset()`

const (
	cancelBackendSQL    = `SELECT pg_cancel_backend($1)`
	terminateBackendSQL = `SELECT pg_terminate_backend($1)`
)
