package queries

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rebeliceyang/pgglance/internal/models"
)

const undefinedColumn = "42703"

// ParseExtVersion parses "1.8" or "1.10.2" into major and minor.
func ParseExtVersion(v string) (major, minor int, ok bool) {
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// statementsVariants lists the column layouts to try, most likely first.
func statementsVariants(serverVersion int, extVersion string) []statementsColumns {
	if serverVersion >= 17 {
		return []statementsColumns{statementsV17, statementsV13, statementsV11}
	}
	if major, minor, ok := ParseExtVersion(extVersion); ok && (major > 1 || (major == 1 && minor >= 8)) {
		return []statementsColumns{statementsV13, statementsV11}
	}
	return []statementsColumns{statementsV11}
}

// FetchStatStatements reads pg_stat_statements. It never fails: problems are
// returned as a message for the Statements panel.
func FetchStatStatements(ctx context.Context, db DB, ext models.DetectedExtensions, version int) ([]models.StatStatement, string) {
	if !ext.PgStatStatements {
		return nil, ""
	}

	var count int64
	if err := db.QueryRow(ctx, statementsCountSQL).Scan(&count); err != nil {
		msg := describe(err)
		switch {
		case strings.Contains(msg, "permission denied"):
			msg += " " + grantHint
		case strings.Contains(msg, "does not exist"):
			msg += " (Extension may be in a different schema)"
		}
		return nil, msg
	}
	if count == 0 {
		return nil, ""
	}

	extVersion := ext.PgStatStatementsVersion
	if extVersion == "" {
		extVersion = "unknown"
	}

	var lastErr string
	for _, cols := range statementsVariants(version, ext.PgStatStatementsVersion) {
		rows, err := collect[models.StatStatement](ctx, db, statementsSQL(cols))
		if err == nil {
			return rows, ""
		}
		if isUndefinedColumn(err) {
			lastErr = err.Error()
			continue
		}
		msg := describe(err)
		if strings.Contains(msg, "permission denied") {
			return nil, msg + " " + grantHint
		}
		return nil, fmt.Sprintf("%s (PG%d, ext %s)", msg, version, extVersion)
	}
	return nil, fmt.Sprintf("%s (PG%d, ext %s, tried all query variants)", lastErr, version, extVersion)
}

const grantHint = "(Try: GRANT pg_read_all_stats TO your_user;)"

func isUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedColumn
	}
	msg := err.Error()
	return strings.Contains(msg, "column") && strings.Contains(msg, "does not exist")
}

// describe joins a server error's message, detail and hint.
func describe(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}
	parts := []string{pgErr.Message}
	if pgErr.Detail != "" {
		parts = append(parts, "Detail: "+pgErr.Detail)
	}
	if pgErr.Hint != "" {
		parts = append(parts, "Hint: "+pgErr.Hint)
	}
	return strings.Join(parts, " - ")
}
