package app

import (
	"strings"

	"github.com/rebeliceyang/pgglance/internal/models"
)

// filterText returns the query applied to panel, or "" when the panel is not
// filtered. While the filter overlay is open the text applies as a preview.
func (a *App) filterText(panel BottomPanel) string {
	if a.Panel != panel || a.Filter.Text == "" {
		return ""
	}
	if a.Filter.Active || a.Mode.Kind == ModeFilter {
		return a.Filter.Text
	}
	return ""
}

func (a *App) snapshotOrEmpty() *models.Snapshot {
	if a.Snapshot == nil {
		return &models.Snapshot{}
	}
	return a.Snapshot
}

// QueryIndices returns the visible rows of the Queries panel.
func (a *App) QueryIndices() []int {
	s := a.Panels.Queries
	return queryTable.Indices(a.snapshotOrEmpty().ActiveQueries, s.Sort, s.Ascending, a.filterText(PanelQueries))
}

// IndexIndices returns the visible rows of the Indexes panel.
func (a *App) IndexIndices() []int {
	s := a.Panels.Indexes
	return indexTable.Indices(a.snapshotOrEmpty().Indexes, s.Sort, s.Ascending, a.filterText(PanelIndexes))
}

// StatementIndices returns the visible rows of the Statements panel.
func (a *App) StatementIndices() []int {
	s := a.Panels.Statements
	return statementTable.Indices(a.snapshotOrEmpty().StatStatements, s.Sort, s.Ascending, a.filterText(PanelStatements))
}

// TableStatIndices returns the visible rows of the Table Stats panel.
func (a *App) TableStatIndices() []int {
	s := a.Panels.Tables
	return tableStatTable.Indices(a.snapshotOrEmpty().TableStats, s.Sort, s.Ascending, a.filterText(PanelTables))
}

// SettingIndices returns the visible rows of the Settings panel.
func (a *App) SettingIndices() []int {
	return settingTable.Indices(a.ServerInfo.Settings, Unsorted{}, true, a.filterText(PanelSettings))
}

// ExtensionIndices returns the visible rows of the Extensions panel.
func (a *App) ExtensionIndices() []int {
	return extensionTable.Indices(a.ServerInfo.ExtensionsList, Unsorted{}, true, a.filterText(PanelExtensions))
}

// rowCount returns how many rows panel shows.
func (a *App) rowCount(panel BottomPanel) int {
	snap := a.snapshotOrEmpty()
	switch panel {
	case PanelQueries:
		return len(a.QueryIndices())
	case PanelIndexes:
		return len(a.IndexIndices())
	case PanelStatements:
		return len(a.StatementIndices())
	case PanelTables:
		return len(a.TableStatIndices())
	case PanelSettings:
		return len(a.SettingIndices())
	case PanelExtensions:
		return len(a.ExtensionIndices())
	case PanelReplication:
		return len(snap.Replication)
	case PanelBlocking:
		return len(snap.BlockingInfo)
	case PanelVacuum:
		return len(snap.VacuumProgress)
	case PanelWraparound:
		return len(snap.Wraparound)
	}
	return 0
}

// clampSelections keeps every panel cursor inside its visible rows.
func (a *App) clampSelections() {
	a.Panels.Queries.Clamp(a.rowCount(PanelQueries))
	a.Panels.Indexes.Clamp(a.rowCount(PanelIndexes))
	a.Panels.Statements.Clamp(a.rowCount(PanelStatements))
	a.Panels.Tables.Clamp(a.rowCount(PanelTables))
	a.Panels.Settings.Clamp(a.rowCount(PanelSettings))
	a.Panels.Extensions.Clamp(a.rowCount(PanelExtensions))
	a.Panels.Replication.Clamp(a.rowCount(PanelReplication))
	a.Panels.Blocking.Clamp(a.rowCount(PanelBlocking))
	a.Panels.Vacuum.Clamp(a.rowCount(PanelVacuum))
	a.Panels.Wraparound.Clamp(a.rowCount(PanelWraparound))
}

// pick maps a cursor over indices back to the collection position.
func pick(indices []int, cursor int, ok bool) (int, bool) {
	if !ok || cursor < 0 || cursor >= len(indices) {
		return 0, false
	}
	return indices[cursor], true
}

// SelectedQuery returns the highlighted row of the Queries panel.
func (a *App) SelectedQuery() (*models.ActiveQuery, bool) {
	cursor, ok := a.Panels.Queries.Selected()
	i, ok := pick(a.QueryIndices(), cursor, ok)
	if !ok {
		return nil, false
	}
	return &a.Snapshot.ActiveQueries[i], true
}

func (a *App) SelectedIndex() (*models.IndexInfo, bool) {
	cursor, ok := a.Panels.Indexes.Selected()
	i, ok := pick(a.IndexIndices(), cursor, ok)
	if !ok {
		return nil, false
	}
	return &a.Snapshot.Indexes[i], true
}

func (a *App) SelectedStatement() (*models.StatStatement, bool) {
	cursor, ok := a.Panels.Statements.Selected()
	i, ok := pick(a.StatementIndices(), cursor, ok)
	if !ok {
		return nil, false
	}
	return &a.Snapshot.StatStatements[i], true
}

func (a *App) SelectedTable() (*models.TableStat, bool) {
	cursor, ok := a.Panels.Tables.Selected()
	i, ok := pick(a.TableStatIndices(), cursor, ok)
	if !ok {
		return nil, false
	}
	return &a.Snapshot.TableStats[i], true
}

func (a *App) SelectedSetting() (*models.PgSetting, bool) {
	cursor, ok := a.Panels.Settings.Selected()
	i, ok := pick(a.SettingIndices(), cursor, ok)
	if !ok {
		return nil, false
	}
	return &a.ServerInfo.Settings[i], true
}

func (a *App) SelectedExtension() (*models.PgExtension, bool) {
	cursor, ok := a.Panels.Extensions.Selected()
	i, ok := pick(a.ExtensionIndices(), cursor, ok)
	if !ok {
		return nil, false
	}
	return &a.ServerInfo.ExtensionsList[i], true
}

// FilteredQueryPIDs lists the PIDs of the visible Queries rows, in display order.
func (a *App) FilteredQueryPIDs() []int32 {
	indices := a.QueryIndices()
	pids := make([]int32, 0, len(indices))
	for _, i := range indices {
		pids = append(pids, a.Snapshot.ActiveQueries[i].PID)
	}
	return pids
}

// inspectTargetForPanel captures a stable id for the highlighted row of the
// active panel.
func (a *App) inspectTargetForPanel() (InspectTarget, bool) {
	snap := a.snapshotOrEmpty()
	switch a.Panel {
	case PanelQueries:
		if q, ok := a.SelectedQuery(); ok {
			return InspectTarget{Kind: InspectQuery, PID: q.PID}, true
		}
	case PanelIndexes:
		if idx, ok := a.SelectedIndex(); ok {
			return InspectTarget{Kind: InspectIndex, Name: idx.Key()}, true
		}
	case PanelStatements:
		if s, ok := a.SelectedStatement(); ok {
			return InspectTarget{Kind: InspectStatement, QueryID: s.QueryID}, true
		}
	case PanelTables:
		if t, ok := a.SelectedTable(); ok {
			return InspectTarget{Kind: InspectTable, Name: t.Key()}, true
		}
	case PanelSettings:
		if s, ok := a.SelectedSetting(); ok {
			return InspectTarget{Kind: InspectSetting, Name: s.Name}, true
		}
	case PanelExtensions:
		if e, ok := a.SelectedExtension(); ok {
			return InspectTarget{Kind: InspectExtension, Name: e.Name}, true
		}
	case PanelReplication:
		if i, ok := a.Panels.Replication.Selected(); ok && i < len(snap.Replication) {
			return InspectTarget{Kind: InspectReplication, PID: snap.Replication[i].PID}, true
		}
	case PanelBlocking:
		if i, ok := a.Panels.Blocking.Selected(); ok && i < len(snap.BlockingInfo) {
			b := snap.BlockingInfo[i]
			return InspectTarget{Kind: InspectBlocking, PID: b.BlockedPID, QueryID: int64(b.BlockerPID)}, true
		}
	case PanelVacuum:
		if i, ok := a.Panels.Vacuum.Selected(); ok && i < len(snap.VacuumProgress) {
			return InspectTarget{Kind: InspectVacuum, PID: snap.VacuumProgress[i].PID}, true
		}
	case PanelWraparound:
		if i, ok := a.Panels.Wraparound.Selected(); ok && i < len(snap.Wraparound) {
			return InspectTarget{Kind: InspectWraparound, Name: snap.Wraparound[i].Datname}, true
		}
	}
	return InspectTarget{}, false
}

// InspectedQuery resolves an inspect target of kind Query against the
// current snapshot. The backend may have finished since it was opened.
func (a *App) InspectedQuery(t InspectTarget) (*models.ActiveQuery, bool) {
	if t.Kind != InspectQuery || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.ActiveQueries {
		if a.Snapshot.ActiveQueries[i].PID == t.PID {
			return &a.Snapshot.ActiveQueries[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedIndex(t InspectTarget) (*models.IndexInfo, bool) {
	if t.Kind != InspectIndex || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.Indexes {
		if a.Snapshot.Indexes[i].Key() == t.Name {
			return &a.Snapshot.Indexes[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedStatement(t InspectTarget) (*models.StatStatement, bool) {
	if t.Kind != InspectStatement || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.StatStatements {
		if a.Snapshot.StatStatements[i].QueryID == t.QueryID {
			return &a.Snapshot.StatStatements[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedTable(t InspectTarget) (*models.TableStat, bool) {
	if t.Kind != InspectTable || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.TableStats {
		if a.Snapshot.TableStats[i].Key() == t.Name {
			return &a.Snapshot.TableStats[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedReplication(t InspectTarget) (*models.ReplicationInfo, bool) {
	if t.Kind != InspectReplication || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.Replication {
		if a.Snapshot.Replication[i].PID == t.PID {
			return &a.Snapshot.Replication[i], true
		}
	}
	return nil, false
}

// InspectedBlocking matches on the (blocked, blocker) pair; the blocker PID
// travels in QueryID.
func (a *App) InspectedBlocking(t InspectTarget) (*models.BlockingInfo, bool) {
	if t.Kind != InspectBlocking || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.BlockingInfo {
		b := &a.Snapshot.BlockingInfo[i]
		if b.BlockedPID == t.PID && int64(b.BlockerPID) == t.QueryID {
			return b, true
		}
	}
	return nil, false
}

func (a *App) InspectedVacuum(t InspectTarget) (*models.VacuumProgress, bool) {
	if t.Kind != InspectVacuum || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.VacuumProgress {
		if a.Snapshot.VacuumProgress[i].PID == t.PID {
			return &a.Snapshot.VacuumProgress[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedWraparound(t InspectTarget) (*models.WraparoundInfo, bool) {
	if t.Kind != InspectWraparound || a.Snapshot == nil {
		return nil, false
	}
	for i := range a.Snapshot.Wraparound {
		if a.Snapshot.Wraparound[i].Datname == t.Name {
			return &a.Snapshot.Wraparound[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedSetting(t InspectTarget) (*models.PgSetting, bool) {
	if t.Kind != InspectSetting {
		return nil, false
	}
	for i := range a.ServerInfo.Settings {
		if a.ServerInfo.Settings[i].Name == t.Name {
			return &a.ServerInfo.Settings[i], true
		}
	}
	return nil, false
}

func (a *App) InspectedExtension(t InspectTarget) (*models.PgExtension, bool) {
	if t.Kind != InspectExtension {
		return nil, false
	}
	for i := range a.ServerInfo.ExtensionsList {
		if a.ServerInfo.ExtensionsList[i].Name == t.Name {
			return &a.ServerInfo.ExtensionsList[i], true
		}
	}
	return nil, false
}

// inspectText is what y copies from the inspect overlay.
func (a *App) inspectText(t InspectTarget) (string, bool) {
	switch t.Kind {
	case InspectQuery:
		if q, ok := a.InspectedQuery(t); ok {
			return str(q.Query), true
		}
	case InspectIndex:
		if idx, ok := a.InspectedIndex(t); ok {
			return idx.IndexDefinition, true
		}
	case InspectStatement:
		if s, ok := a.InspectedStatement(t); ok {
			return s.Query, true
		}
	case InspectReplication:
		if r, ok := a.InspectedReplication(t); ok {
			return str(r.ApplicationName), true
		}
	case InspectTable:
		if tbl, ok := a.InspectedTable(t); ok {
			return tbl.Key(), true
		}
	case InspectBlocking:
		if b, ok := a.InspectedBlocking(t); ok {
			return str(b.BlockedQuery), true
		}
	case InspectVacuum:
		if v, ok := a.InspectedVacuum(t); ok {
			return v.TableName, true
		}
	case InspectWraparound:
		if w, ok := a.InspectedWraparound(t); ok {
			return w.Datname, true
		}
	case InspectSetting:
		if s, ok := a.InspectedSetting(t); ok {
			return s.Name + " = " + s.Setting, true
		}
	case InspectExtension:
		if e, ok := a.InspectedExtension(t); ok {
			return e.Name, true
		}
	}
	return "", false
}

// selectedText is what y copies from the panel view.
func (a *App) selectedText() (string, bool) {
	t, ok := a.inspectTargetForPanel()
	if !ok {
		return "", false
	}
	text, ok := a.inspectText(t)
	return strings.TrimSpace(text), ok && text != ""
}
