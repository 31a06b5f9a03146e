package queries

import (
	"context"

	"github.com/rebeliceyang/pgglance/internal/models"
)

type bloatRow struct {
	Schemaname string  `db:"schemaname"`
	Relname    string  `db:"relname"`
	TableName  string  `db:"table_name"`
	IndexName  string  `db:"index_name"`
	BloatPct   float64 `db:"bloat_pct"`
	BloatBytes int64   `db:"bloat_bytes"`
}

func (r bloatRow) key() string {
	if r.IndexName != "" {
		return r.Schemaname + "." + r.IndexName
	}
	return r.Schemaname + "." + r.Relname
}

// Bloat maps schema.name to an estimate, for tables and indexes.
type Bloat struct {
	Tables  map[string]models.BloatEstimate
	Indexes map[string]models.BloatEstimate
}

type bloatQuery struct {
	sql    string
	source models.BloatSource
}

// FetchBloat estimates table and index bloat. Each side tries pgstattuple
// when installed, then the statistical estimate, then the naive one; the
// first non-empty result wins and only a failing naive query is an error.
func FetchBloat(ctx context.Context, db DB, ext models.DetectedExtensions) (Bloat, error) {
	tables, err := estimate(ctx, db, bloatChain(ext, tableBloatPgstattupleSQL, tableBloatStatisticalSQL, tableBloatNaiveSQL))
	if err != nil {
		return Bloat{}, wrap("table bloat", err)
	}
	indexes, err := estimate(ctx, db, bloatChain(ext, indexBloatPgstattupleSQL, indexBloatStatisticalSQL, indexBloatNaiveSQL))
	if err != nil {
		return Bloat{}, wrap("index bloat", err)
	}
	return Bloat{Tables: tables, Indexes: indexes}, nil
}

func bloatChain(ext models.DetectedExtensions, pgstattuple, statistical, naive string) []bloatQuery {
	var chain []bloatQuery
	if ext.Pgstattuple {
		chain = append(chain, bloatQuery{pgstattuple, models.BloatPgstattuple})
	}
	return append(chain,
		bloatQuery{statistical, models.BloatStatistical},
		bloatQuery{naive, models.BloatNaive},
	)
}

func estimate(ctx context.Context, db DB, chain []bloatQuery) (map[string]models.BloatEstimate, error) {
	for i, q := range chain {
		rows, err := collectLax[bloatRow](ctx, db, q.sql)
		last := i == len(chain)-1
		if err != nil {
			if last {
				return nil, err
			}
			continue
		}
		if len(rows) == 0 && !last {
			continue
		}
		out := make(map[string]models.BloatEstimate, len(rows))
		for _, r := range rows {
			out[r.key()] = models.BloatEstimate{Bytes: r.BloatBytes, Pct: r.BloatPct, Source: q.source}
		}
		return out, nil
	}
	return map[string]models.BloatEstimate{}, nil
}
