package app

import (
	"strconv"
	"strings"

	"github.com/rebeliceyang/pgglance/internal/filter"
	"github.com/rebeliceyang/pgglance/internal/models"
)

// QuerySort orders the Queries panel.
type QuerySort int

const (
	QuerySortDuration QuerySort = iota
	QuerySortPID
	QuerySortUser
	QuerySortState
)

func (c QuerySort) Next() QuerySort        { return (c + 1) % 4 }
func (c QuerySort) DefaultAscending() bool { return false }

func (c QuerySort) Label() string {
	return [...]string{"Duration", "PID", "User", "State"}[c]
}

// IndexSort orders the Indexes panel.
type IndexSort int

const (
	IndexSortScans IndexSort = iota
	IndexSortSize
	IndexSortName
	IndexSortTupRead
	IndexSortTupFetch
)

func (c IndexSort) Next() IndexSort { return (c + 1) % 5 }

// Unused indexes surface first, names read alphabetically.
func (c IndexSort) DefaultAscending() bool {
	return c == IndexSortScans || c == IndexSortName
}

func (c IndexSort) Label() string {
	return [...]string{"Scans", "Size", "Name", "Tup Read", "Tup Fetch"}[c]
}

// TableSort orders the Table Stats panel.
type TableSort int

const (
	TableSortDeadTuples TableSort = iota
	TableSortSize
	TableSortName
	TableSortSeqScan
	TableSortIdxScan
	TableSortDeadRatio
)

func (c TableSort) Next() TableSort        { return (c + 1) % 6 }
func (c TableSort) DefaultAscending() bool { return c == TableSortName }

func (c TableSort) Label() string {
	return [...]string{"Dead Tuples", "Size", "Name", "Seq Scan", "Idx Scan", "Dead %"}[c]
}

// StatementSort orders the Statements panel.
type StatementSort int

const (
	StmtSortTotalTime StatementSort = iota
	StmtSortMeanTime
	StmtSortMaxTime
	StmtSortStddev
	StmtSortCalls
	StmtSortRows
	StmtSortHitRatio
	StmtSortSharedReads
	StmtSortIOTime
	StmtSortTemp
)

func (c StatementSort) Next() StatementSort    { return (c + 1) % 10 }
func (c StatementSort) DefaultAscending() bool { return false }

func (c StatementSort) Label() string {
	return [...]string{
		"Total Time", "Mean Time", "Max Time", "Stddev", "Calls",
		"Rows", "Hit %", "Reads", "I/O Time", "Temp",
	}[c]
}

// Unsorted is the column type of panels shown in query order.
type Unsorted struct{}

func (Unsorted) Next() Unsorted         { return Unsorted{} }
func (Unsorted) Label() string          { return "" }
func (Unsorted) DefaultAscending() bool { return true }

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var queryTable = filter.Table[models.ActiveQuery, QuerySort]{
	Key: func(q *models.ActiveQuery, c QuerySort) filter.Key {
		switch c {
		case QuerySortPID:
			return filter.Num(q.PID)
		case QuerySortUser:
			return filter.OptText(q.Usename)
		case QuerySortState:
			return filter.OptText(q.State)
		default:
			return filter.Num(q.DurationSecs)
		}
	},
	Search: func(q *models.ActiveQuery) string {
		return strings.Join([]string{
			strconv.Itoa(int(q.PID)), str(q.Usename), str(q.Datname),
			str(q.State), str(q.WaitEvent), str(q.Query),
		}, " ")
	},
}

var indexTable = filter.Table[models.IndexInfo, IndexSort]{
	Key: func(i *models.IndexInfo, c IndexSort) filter.Key {
		switch c {
		case IndexSortSize:
			return filter.Num(i.IndexSizeBytes)
		case IndexSortName:
			return filter.Text(i.IndexName)
		case IndexSortTupRead:
			return filter.Num(i.IdxTupRead)
		case IndexSortTupFetch:
			return filter.Num(i.IdxTupFetch)
		default:
			return filter.Num(i.IdxScan)
		}
	},
	Search: func(i *models.IndexInfo) string {
		return strings.Join([]string{i.Schemaname, i.TableName, i.IndexName, i.IndexDefinition}, " ")
	},
}

var tableStatTable = filter.Table[models.TableStat, TableSort]{
	Key: func(t *models.TableStat, c TableSort) filter.Key {
		switch c {
		case TableSortSize:
			return filter.Num(t.TotalSizeBytes)
		case TableSortName:
			return filter.Text(t.Relname)
		case TableSortSeqScan:
			return filter.Num(t.SeqScan)
		case TableSortIdxScan:
			return filter.Num(t.IdxScan)
		case TableSortDeadRatio:
			return filter.Num(t.DeadRatio)
		default:
			return filter.Num(t.NDeadTup)
		}
	},
	Search: func(t *models.TableStat) string {
		return t.Schemaname + " " + t.Relname
	},
}

var statementTable = filter.Table[models.StatStatement, StatementSort]{
	Key: func(s *models.StatStatement, c StatementSort) filter.Key {
		switch c {
		case StmtSortMeanTime:
			return filter.Num(s.MeanExecTime)
		case StmtSortMaxTime:
			return filter.Num(s.MaxExecTime)
		case StmtSortStddev:
			return filter.Num(s.StddevExecTime)
		case StmtSortCalls:
			return filter.Num(s.Calls)
		case StmtSortRows:
			return filter.Num(s.Rows)
		case StmtSortHitRatio:
			return filter.Num(s.HitRatio)
		case StmtSortSharedReads:
			return filter.Num(s.SharedBlksRead)
		case StmtSortIOTime:
			return filter.Num(s.BlkReadTime + s.BlkWriteTime)
		case StmtSortTemp:
			return filter.Num(s.TempBlksRead + s.TempBlksWritten)
		default:
			return filter.Num(s.TotalExecTime)
		}
	},
	Search: func(s *models.StatStatement) string { return s.Query },
}

// Settings and extensions arrive ordered from the server.
var settingTable = filter.Table[models.PgSetting, Unsorted]{
	Search: func(s *models.PgSetting) string {
		return s.Name + " " + s.Category + " " + s.ShortDesc
	},
}

var extensionTable = filter.Table[models.PgExtension, Unsorted]{
	Search: func(e *models.PgExtension) string {
		return e.Name + " " + e.Schema + " " + str(e.Description)
	},
}
