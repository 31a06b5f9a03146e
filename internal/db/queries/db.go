// Package queries reads monitoring snapshots from PostgreSQL and runs the
// few mutating statements the dashboard offers.
package queries

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool and *pgxpool.Conn the queries use.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// collect runs sql and maps every row onto T by db tag.
func collect[T any](ctx context.Context, db DB, sql string) ([]T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// collectLax is collect for structs with more fields than the query returns.
func collectLax[T any](ctx context.Context, db DB, sql string) ([]T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

// collectOne runs sql expecting exactly one row.
func collectOne[T any](ctx context.Context, db DB, sql string) (T, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}
