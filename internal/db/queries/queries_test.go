package queries

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rebeliceyang/pgglance/internal/models"
)

func TestParseExtVersion(t *testing.T) {
	valid := map[string][2]int{
		"1.8":   {1, 8},
		"1.10":  {1, 10},
		"2.0":   {2, 0},
		"1.8.3": {1, 8},
		"0.0":   {0, 0},
	}
	for in, want := range valid {
		major, minor, ok := ParseExtVersion(in)
		if !ok || major != want[0] || minor != want[1] {
			t.Errorf("ParseExtVersion(%q): expected %v, got %d.%d (%v)", in, want, major, minor, ok)
		}
	}
	for _, in := range []string{"", "1", "abc", "a.b", "1.abc"} {
		if _, _, ok := ParseExtVersion(in); ok {
			t.Errorf("ParseExtVersion(%q): expected failure", in)
		}
	}
}

func TestStatementsSQLVariants(t *testing.T) {
	v11 := statementsSQL(statementsV11)
	for _, want := range []string{"total_time", "min_time", "blk_read_time", "ORDER BY total_time DESC"} {
		if !strings.Contains(v11, want) {
			t.Errorf("v11: expected %q", want)
		}
	}
	if strings.Contains(v11, "COALESCE(min_exec_time") {
		t.Error("v11: expected no exec_ source columns")
	}

	v13 := statementsSQL(statementsV13)
	for _, want := range []string{"COALESCE(total_exec_time, 0)", "COALESCE(blk_read_time, 0)", "ORDER BY total_exec_time DESC"} {
		if !strings.Contains(v13, want) {
			t.Errorf("v13: expected %q", want)
		}
	}

	v17 := statementsSQL(statementsV17)
	for _, want := range []string{"shared_blk_read_time", "shared_blk_write_time", "ORDER BY total_exec_time DESC"} {
		if !strings.Contains(v17, want) {
			t.Errorf("v17: expected %q", want)
		}
	}

	for _, sql := range []string{v11, v13, v17} {
		for _, alias := range []string{"AS total_exec_time", "AS blk_read_time", "AS blk_write_time", "AS hit_ratio", "LIMIT 100"} {
			if !strings.Contains(sql, alias) {
				t.Errorf("expected %q in every variant", alias)
			}
		}
	}
}

func TestStatementsVariantsOrder(t *testing.T) {
	tests := []struct {
		server int
		ext    string
		want   []statementsColumns
	}{
		{17, "1.11", []statementsColumns{statementsV17, statementsV13, statementsV11}},
		{17, "", []statementsColumns{statementsV17, statementsV13, statementsV11}},
		{15, "1.10", []statementsColumns{statementsV13, statementsV11}},
		{13, "1.8", []statementsColumns{statementsV13, statementsV11}},
		{12, "1.7", []statementsColumns{statementsV11}},
		{12, "", []statementsColumns{statementsV11}},
	}
	for _, tt := range tests {
		got := statementsVariants(tt.server, tt.ext)
		if len(got) != len(tt.want) {
			t.Errorf("PG%d ext %q: expected %d variants, got %d", tt.server, tt.ext, len(tt.want), len(got))
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("PG%d ext %q: variant %d is %+v", tt.server, tt.ext, i, got[i])
			}
		}
	}
}

func TestCheckpointStatsSQL(t *testing.T) {
	if !strings.Contains(checkpointStatsSQL(16), "pg_stat_bgwriter") {
		t.Error("expected pg_stat_bgwriter before 17")
	}
	if !strings.Contains(checkpointStatsSQL(17), "pg_stat_checkpointer") {
		t.Error("expected pg_stat_checkpointer from 17")
	}
}

func TestDescribeAndUndefinedColumn(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42501", Message: "permission denied for view pg_stat_statements", Hint: "ask an admin"}
	wrapped := fmt.Errorf("query: %w", pgErr)
	if got := describe(wrapped); got != "permission denied for view pg_stat_statements - Hint: ask an admin" {
		t.Errorf("unexpected description %q", got)
	}
	if got := describe(errors.New("conn closed")); got != "conn closed" {
		t.Errorf("expected plain message, got %q", got)
	}

	if !isUndefinedColumn(&pgconn.PgError{Code: undefinedColumn, Message: "column \"total_time\" does not exist"}) {
		t.Error("expected 42703 to be an undefined column")
	}
	if isUndefinedColumn(pgErr) {
		t.Error("expected permission error not to be an undefined column")
	}
	if !isUndefinedColumn(errors.New(`column "x" does not exist`)) {
		t.Error("expected message fallback to match")
	}
}

func TestBloatChain(t *testing.T) {
	chain := bloatChain(models.DetectedExtensions{}, "p", "s", "n")
	if len(chain) != 2 || chain[0].source != models.BloatStatistical || chain[1].source != models.BloatNaive {
		t.Errorf("unexpected chain without pgstattuple: %+v", chain)
	}
	chain = bloatChain(models.DetectedExtensions{Pgstattuple: true}, "p", "s", "n")
	if len(chain) != 3 || chain[0].sql != "p" || chain[0].source != models.BloatPgstattuple {
		t.Errorf("unexpected chain with pgstattuple: %+v", chain)
	}
}

func TestBloatRowKey(t *testing.T) {
	if got := (bloatRow{Schemaname: "public", Relname: "users"}).key(); got != "public.users" {
		t.Errorf("expected public.users, got %s", got)
	}
	if got := (bloatRow{Schemaname: "public", TableName: "users", IndexName: "users_pkey"}).key(); got != "public.users_pkey" {
		t.Errorf("expected public.users_pkey, got %s", got)
	}
}
