package models

import (
	"strconv"
	"strings"
	"time"
)

// DetectedExtensions lists the monitoring extensions installed on the server.
type DetectedExtensions struct {
	PgStatStatements        bool   `json:"pg_stat_statements"`
	PgStatStatementsVersion string `json:"pg_stat_statements_version,omitempty"`
	PgStatKcache            bool   `json:"pg_stat_kcache"`
	PgWaitSampling          bool   `json:"pg_wait_sampling"`
	PgBuffercache           bool   `json:"pg_buffercache"`
	Pgstattuple             bool   `json:"pgstattuple"`
	PgstattupleVersion      string `json:"pgstattuple_version,omitempty"`
}

// ServerInfo is read once per connection and stored in recording headers.
type ServerInfo struct {
	Version        string             `json:"version"`
	StartTime      time.Time          `json:"start_time"`
	MaxConnections int64              `json:"max_connections"`
	Extensions     DetectedExtensions `json:"extensions"`
	Settings       []PgSetting        `json:"settings"`
	ExtensionsList []PgExtension      `json:"extensions_list"`
}

// MajorVersion parses "PostgreSQL 15.3 on ..." into 15. Unknown versions return 0.
func (s ServerInfo) MajorVersion() int {
	rest, ok := strings.CutPrefix(s.Version, "PostgreSQL ")
	if !ok {
		return 0
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return 0
	}
	if end > 0 {
		rest = rest[:end]
	}
	major, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return major
}

type PgSetting struct {
	Name           string  `json:"name" db:"name"`
	Setting        string  `json:"setting" db:"setting"`
	Unit           *string `json:"unit" db:"unit"`
	Category       string  `json:"category" db:"category"`
	ShortDesc      string  `json:"short_desc" db:"short_desc"`
	Context        string  `json:"context" db:"context"`
	Source         string  `json:"source" db:"source"`
	PendingRestart bool    `json:"pending_restart" db:"pending_restart"`
}

type PgExtension struct {
	Name        string  `json:"name" db:"name"`
	Version     string  `json:"version" db:"version"`
	Schema      string  `json:"schema" db:"schema"`
	Relocatable bool    `json:"relocatable" db:"relocatable"`
	Description *string `json:"description" db:"description"`
}
