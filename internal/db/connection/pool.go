package connection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/pgglance/internal/models"
)

// SSL modes accepted on the command line in addition to libpq's own.
const (
	SSLModeAuto       = "auto"
	SSLModeDisable    = "disable"
	SSLModeRequire    = "require"
	SSLModeVerifyCA   = "verify-ca"
	SSLModeVerifyFull = "verify-full"
)

// autoModes is the order tried by SSLModeAuto.
var autoModes = []string{SSLModeDisable, SSLModeVerifyFull, SSLModeRequire}

// SSLLabel is the header-bar description of an sslmode.
func SSLLabel(mode string) string {
	switch mode {
	case SSLModeDisable:
		return "No TLS"
	case SSLModeVerifyFull, SSLModeVerifyCA:
		return "SSL (verified)"
	case SSLModeRequire:
		return "SSL (insecure)"
	case "":
		return ""
	default:
		return "SSL (" + mode + ")"
	}
}

// Pool wraps pgxpool with our configuration
type Pool struct {
	pool     *pgxpool.Pool
	config   models.ConnectionConfig
	sslLabel string
}

// NewPool connects using config. With sslmode auto (or unset) each mode of
// autoModes is tried in turn and the first that pings wins.
func NewPool(ctx context.Context, config models.ConnectionConfig) (*Pool, error) {
	if config.ConnString != "" {
		return open(ctx, config, config.ConnString, "")
	}

	modes := []string{config.SSLMode}
	if config.SSLMode == "" || config.SSLMode == SSLModeAuto {
		modes = autoModes
	}

	var errs []error
	for _, mode := range modes {
		p, err := open(ctx, config, buildConnectionString(config, mode), mode)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		errs = append(errs, fmt.Errorf("sslmode=%s: %w", mode, err))
	}
	return nil, errors.Join(errs...)
}

func open(ctx context.Context, config models.ConnectionConfig, connString, mode string) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// One backend: the activity queries hide only pg_backend_pid().
	poolConfig.MaxConns = 1
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pgglance"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	label := SSLLabel(mode)
	if mode == "" {
		label = "No TLS"
		if poolConfig.ConnConfig.TLSConfig != nil {
			label = "SSL"
		}
	}

	cc := poolConfig.ConnConfig
	config.Host, config.Port, config.Database, config.User = cc.Host, int(cc.Port), cc.Database, cc.User

	return &Pool{
		pool:     pool,
		config:   config,
		sslLabel: label,
	}, nil
}

// Close closes the connection pool
func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Ping tests the connection
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// GetPool returns the underlying pgxpool.Pool
func (p *Pool) GetPool() *pgxpool.Pool {
	return p.pool
}

// Info is the display form of the established connection.
func (p *Pool) Info() models.ConnectionInfo {
	return models.ConnectionInfo{
		Host:     p.config.Host,
		Port:     p.config.Port,
		Database: p.config.Database,
		User:     p.config.User,
		SSLLabel: p.sslLabel,
	}
}

// buildConnectionString creates a libpq keyword/value connection string.
func buildConnectionString(config models.ConnectionConfig, sslMode string) string {
	if sslMode == "" {
		sslMode = "prefer"
	}

	parts := []string{
		"host=" + quote(config.Host),
		fmt.Sprintf("port=%d", config.Port),
		"user=" + quote(config.User),
		"dbname=" + quote(config.Database),
		"sslmode=" + sslMode,
	}
	if config.Password != "" {
		parts = append(parts, "password="+quote(config.Password))
	}
	if config.SSLRootCert != "" {
		parts = append(parts, "sslrootcert="+quote(config.SSLRootCert))
	}
	if config.SSLCert != "" {
		parts = append(parts, "sslcert="+quote(config.SSLCert))
	}
	if config.SSLKey != "" {
		parts = append(parts, "sslkey="+quote(config.SSLKey))
	}
	return strings.Join(parts, " ")
}

// quote escapes a keyword/value value when it is empty or contains spaces,
// quotes or backslashes.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
