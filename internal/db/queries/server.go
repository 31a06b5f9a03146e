package queries

import (
	"context"

	"github.com/rebeliceyang/pgglance/internal/models"
)

type extensionRow struct {
	Name    string `db:"extname"`
	Version string `db:"extversion"`
}

// DetectExtensions reports which monitoring extensions are installed.
// A failed lookup reports none.
func DetectExtensions(ctx context.Context, db DB) models.DetectedExtensions {
	var ext models.DetectedExtensions
	rows, err := collect[extensionRow](ctx, db, extensionsSQL)
	if err != nil {
		return ext
	}
	for _, r := range rows {
		switch r.Name {
		case "pg_stat_statements":
			ext.PgStatStatements = true
			ext.PgStatStatementsVersion = r.Version
		case "pg_stat_kcache":
			ext.PgStatKcache = true
		case "pg_wait_sampling":
			ext.PgWaitSampling = true
		case "pg_buffercache":
			ext.PgBuffercache = true
		case "pgstattuple":
			ext.Pgstattuple = true
			ext.PgstattupleVersion = r.Version
		}
	}
	return ext
}

// FetchServerInfo reads the once-per-connection server facts. Settings and
// the extension list are best effort.
func FetchServerInfo(ctx context.Context, db DB) (models.ServerInfo, error) {
	info := models.ServerInfo{Extensions: DetectExtensions(ctx, db)}
	info.Settings, _ = collect[models.PgSetting](ctx, db, settingsSQL)
	info.ExtensionsList, _ = collect[models.PgExtension](ctx, db, extensionsListSQL)

	err := db.QueryRow(ctx, serverInfoSQL).Scan(&info.Version, &info.StartTime, &info.MaxConnections)
	if err != nil {
		return info, wrap("server info", err)
	}
	return info, nil
}
