package app

// BottomPanel selects the table shown under the graphs.
type BottomPanel int

const (
	PanelQueries BottomPanel = iota
	PanelBlocking
	PanelWaitEvents
	PanelTables
	PanelReplication
	PanelVacuum
	PanelWraparound
	PanelIndexes
	PanelStatements
	PanelWalIO
	PanelSettings
	PanelExtensions
)

// Panels lists every panel in tab order.
var Panels = []BottomPanel{
	PanelQueries,
	PanelBlocking,
	PanelWaitEvents,
	PanelTables,
	PanelReplication,
	PanelVacuum,
	PanelWraparound,
	PanelIndexes,
	PanelStatements,
	PanelWalIO,
	PanelSettings,
	PanelExtensions,
}

// SupportsFilter reports whether "/" opens the filter overlay on p.
func (p BottomPanel) SupportsFilter() bool {
	switch p {
	case PanelQueries, PanelIndexes, PanelStatements, PanelTables, PanelSettings, PanelExtensions:
		return true
	}
	return false
}

func (p BottomPanel) Label() string {
	switch p {
	case PanelQueries:
		return "Queries"
	case PanelBlocking:
		return "Blocking"
	case PanelWaitEvents:
		return "Wait Events"
	case PanelTables:
		return "Table Stats"
	case PanelReplication:
		return "Replication"
	case PanelVacuum:
		return "Vacuum Progress"
	case PanelWraparound:
		return "Wraparound"
	case PanelIndexes:
		return "Indexes"
	case PanelStatements:
		return "Statements"
	case PanelWalIO:
		return "WAL & I/O"
	case PanelSettings:
		return "Settings"
	case PanelExtensions:
		return "Extensions"
	}
	return "Unknown"
}
