package queries

// pgstattuple_approx based table bloat; needs the pgstattuple extension.
const tableBloatPgstattupleSQL = `
SELECT
    s.schemaname,
    s.relname,
    (t.dead_tuple_percent + t.free_percent)::float8 AS bloat_pct,
    ((t.table_len * (t.dead_tuple_percent + t.free_percent) / 100.0))::bigint AS bloat_bytes
FROM pg_stat_user_tables s,
LATERAL pgstattuple_approx(s.relid) t
WHERE s.n_live_tup > 100
ORDER BY bloat_bytes DESC`

// pgstatindex based bloat for valid B-tree indexes over 64kB.
const indexBloatPgstattupleSQL = `
SELECT
    sui.schemaname,
    sui.relname AS table_name,
    sui.indexrelname AS index_name,
    (100.0 - t.avg_leaf_density)::float8 AS bloat_pct,
    ((pg_relation_size(sui.indexrelid) * (100.0 - t.avg_leaf_density) / 100.0))::bigint AS bloat_bytes
FROM pg_stat_user_indexes sui
JOIN pg_class c ON c.oid = sui.indexrelid
JOIN pg_index i ON i.indexrelid = sui.indexrelid,
LATERAL pgstatindex(sui.indexrelid) t
WHERE pg_relation_size(sui.indexrelid) > 65536
  AND i.indisvalid
  AND c.relam = (SELECT oid FROM pg_am WHERE amname = 'btree')
ORDER BY bloat_bytes DESC`

// Expected heap pages from pg_stats row widths compared with relpages.
const tableBloatStatisticalSQL = `
WITH constants AS (
    SELECT
        current_setting('block_size')::numeric AS bs,
        23 AS page_hdr,
        8 AS tuple_hdr
),
table_stats AS (
    SELECT
        s.schemaname,
        s.relname,
        s.relid,
        c.relpages,
        c.reltuples,
        COALESCE(
            (SELECT (CASE WHEN regexp_replace(reloptions::text, '.*fillfactor=([0-9]+).*', '\1') ~ '^[0-9]+$'
                          THEN regexp_replace(reloptions::text, '.*fillfactor=([0-9]+).*', '\1')::int
                          ELSE 100 END)
             FROM pg_class WHERE oid = s.relid), 100
        ) AS fillfactor
    FROM pg_stat_user_tables s
    JOIN pg_class c ON c.oid = s.relid
    WHERE c.reltuples > 100
),
col_stats AS (
    SELECT
        ts.schemaname,
        ts.relname,
        ts.relid,
        ts.relpages,
        ts.reltuples,
        ts.fillfactor,
        SUM(
            (1 - COALESCE(s.null_frac, 0)) *
            COALESCE(s.avg_width,
                CASE
                    WHEN a.atttypid = 'int4'::regtype THEN 4
                    WHEN a.atttypid = 'int8'::regtype THEN 8
                    WHEN a.atttypid = 'int2'::regtype THEN 2
                    WHEN a.atttypid = 'bool'::regtype THEN 1
                    WHEN a.atttypid = 'float4'::regtype THEN 4
                    WHEN a.atttypid = 'float8'::regtype THEN 8
                    WHEN a.atttypid = 'timestamp'::regtype THEN 8
                    WHEN a.atttypid = 'timestamptz'::regtype THEN 8
                    WHEN a.atttypid = 'uuid'::regtype THEN 16
                    ELSE 10
                END
            )
        ) AS avg_row_width
    FROM table_stats ts
    JOIN pg_attribute a ON a.attrelid = ts.relid AND a.attnum > 0 AND NOT a.attisdropped
    LEFT JOIN pg_stats s ON s.schemaname = ts.schemaname
                        AND s.tablename = ts.relname
                        AND s.attname = a.attname
    GROUP BY ts.schemaname, ts.relname, ts.relid, ts.relpages, ts.reltuples, ts.fillfactor
),
bloat_calc AS (
    SELECT
        cs.schemaname,
        cs.relname,
        cs.relpages,
        cs.reltuples,
        c.bs,
        cs.fillfactor,
        (c.tuple_hdr + cs.avg_row_width + 7)::int / 8 * 8 AS tpl_size,
        ((c.bs - c.page_hdr) * cs.fillfactor / 100)::int AS usable_page
    FROM col_stats cs
    CROSS JOIN constants c
),
expected AS (
    SELECT
        schemaname,
        relname,
        relpages,
        bs,
        CEIL(reltuples * tpl_size / NULLIF(usable_page, 0)) AS expected_pages
    FROM bloat_calc
    WHERE tpl_size > 0 AND usable_page > 0
)
SELECT
    schemaname,
    relname,
    GREATEST(0.0, 100.0 * (relpages - expected_pages) / NULLIF(relpages, 0))::float8 AS bloat_pct,
    GREATEST(0, (relpages - expected_pages) * bs)::bigint AS bloat_bytes
FROM expected
WHERE relpages > 0
ORDER BY bloat_bytes DESC`

// Expected index size from key widths with 1.3x B-tree overhead.
const indexBloatStatisticalSQL = `
WITH index_stats AS (
    SELECT
        sui.schemaname,
        sui.relname AS table_name,
        sui.indexrelname AS index_name,
        pg_relation_size(sui.indexrelid) AS index_size,
        c.reltuples AS table_tuples,
        COALESCE(
            (SELECT SUM(COALESCE(s.avg_width, 8))
             FROM pg_index i
             JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
             LEFT JOIN pg_stats s ON s.schemaname = sui.schemaname
                                  AND s.tablename = sui.relname
                                  AND s.attname = a.attname
             WHERE i.indexrelid = sui.indexrelid),
            24
        ) + 8 AS est_idx_tuple_size
    FROM pg_stat_user_indexes sui
    JOIN pg_class c ON c.oid = sui.relid
    JOIN pg_index i ON i.indexrelid = sui.indexrelid
    WHERE pg_relation_size(sui.indexrelid) > 65536
      AND i.indisvalid
),
bloat_calc AS (
    SELECT
        schemaname,
        table_name,
        index_name,
        index_size,
        GREATEST(8192, (table_tuples * est_idx_tuple_size * 1.3)::bigint) AS expected_size
    FROM index_stats
    WHERE table_tuples > 0
)
SELECT
    schemaname,
    table_name,
    index_name,
    GREATEST(0.0, 100.0 * (index_size - expected_size) / NULLIF(index_size, 0))::float8 AS bloat_pct,
    GREATEST(0, index_size - expected_size)::bigint AS bloat_bytes
FROM bloat_calc
ORDER BY bloat_bytes DESC`

// Naive estimate assuming roughly 100 bytes per live row.
const tableBloatNaiveSQL = `
SELECT
    schemaname,
    relname,
    (CASE
        WHEN pg_table_size(relid) > 0 AND n_live_tup > 0
        THEN GREATEST(0.0, 100.0 * (1.0 - (n_live_tup * 100.0 / pg_table_size(relid))))
        ELSE 0.0
    END)::float8 AS bloat_pct,
    GREATEST(0, pg_table_size(relid) - (n_live_tup * 100))::bigint AS bloat_bytes
FROM pg_stat_user_tables
WHERE n_live_tup > 0
ORDER BY bloat_bytes DESC`

// Naive estimate assuming roughly 50 bytes per index entry.
const indexBloatNaiveSQL = `
SELECT
    sui.schemaname,
    sui.relname AS table_name,
    sui.indexrelname AS index_name,
    (CASE
        WHEN pg_relation_size(sui.indexrelid) > 8192 AND c.reltuples > 0
        THEN GREATEST(0.0, 100.0 * (1.0 - (c.reltuples * 50.0 / pg_relation_size(sui.indexrelid))))
        ELSE 0.0
    END)::float8 AS bloat_pct,
    GREATEST(0, pg_relation_size(sui.indexrelid) - GREATEST(c.reltuples * 50, 8192))::bigint AS bloat_bytes
FROM pg_stat_user_indexes sui
JOIN pg_class c ON c.oid = sui.indexrelid
WHERE pg_relation_size(sui.indexrelid) > 0
ORDER BY bloat_bytes DESC`
