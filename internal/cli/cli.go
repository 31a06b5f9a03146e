// Package cli parses the command line into connection and session options.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rebeliceyang/pgglance/internal/config"
	"github.com/rebeliceyang/pgglance/internal/db/connection"
	"github.com/rebeliceyang/pgglance/internal/models"
	"github.com/spf13/pflag"
)

// ConnectionEnv overrides the individual connection flags with a full
// connection string, like -c.
const ConnectionEnv = "PGGLANCE_CONNECTION"

// ErrHelp is returned after the usage text was printed for -h.
var ErrHelp = pflag.ErrHelp

// Options is the parsed command line.
type Options struct {
	Connection models.ConnectionConfig

	RefreshSecs   int
	HistoryLength int
	ReplayPath    string
	NoRecord      bool
	SavePassword  bool
	LogFile       string
	LogLevel      string
	Version       bool
}

// Parse reads args (without the program name). env supplies the defaults of
// the connection flags, normally discovery.EnvironmentConfig(). cfg supplies
// the refresh and history defaults; it is not modified.
func Parse(args []string, env models.ConnectionConfig, cfg *config.Config, output io.Writer) (*Options, error) {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	opts := &Options{Connection: env}
	conn := &opts.Connection
	if conn.Port == 0 {
		conn.Port = 5432
	}
	if conn.SSLMode == "" {
		conn.SSLMode = connection.SSLModeAuto
	}

	fs := pflag.NewFlagSet("pgglance", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(output, "pgglance - terminal PostgreSQL monitor\n\nUsage:\n  pgglance [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&conn.ConnString, "connection", "c", os.Getenv(ConnectionEnv), "connection string or URI, overrides the individual connection flags")
	fs.StringVarP(&conn.Host, "host", "H", conn.Host, "server host or socket directory")
	fs.IntVarP(&conn.Port, "port", "p", conn.Port, "server port")
	fs.StringVarP(&conn.Database, "dbname", "d", conn.Database, "database name")
	fs.StringVarP(&conn.User, "user", "U", conn.User, "user name")
	fs.StringVarP(&conn.Password, "password", "W", conn.Password, "password (falls back to ~/.pgpass and the keyring)")
	fs.StringVar(&conn.SSLMode, "sslmode", conn.SSLMode, "auto, disable, require, verify-ca or verify-full")
	fs.StringVar(&conn.SSLRootCert, "sslrootcert", conn.SSLRootCert, "CA certificate file")
	fs.StringVar(&conn.SSLCert, "sslcert", conn.SSLCert, "client certificate file")
	fs.StringVar(&conn.SSLKey, "sslkey", conn.SSLKey, "client key file")
	fs.BoolVar(&opts.SavePassword, "save-password", false, "store the password in the keyring after connecting")

	fs.IntVarP(&opts.RefreshSecs, "refresh", "r", cfg.Monitor.RefreshIntervalSecs, "refresh interval in seconds")
	fs.IntVar(&opts.HistoryLength, "history-length", cfg.Monitor.HistoryLength, "data points kept per graph")
	fs.StringVar(&opts.ReplayPath, "replay", "", "replay a recording instead of connecting")
	fs.BoolVar(&opts.NoRecord, "no-record", false, "do not record this session")
	fs.StringVar(&opts.LogFile, "log-file", "", "log file (default <cache dir>/pgglance/pgglance.log)")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "debug, info, warn or error")
	fs.BoolVar(&opts.Version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	var errs []error
	if o.Connection.Port <= 0 || o.Connection.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", o.Connection.Port))
	}
	if o.RefreshSecs < config.MinRefreshSecs || o.RefreshSecs > config.MaxRefreshSecs {
		errs = append(errs, fmt.Errorf("refresh must be between %d and %d seconds", config.MinRefreshSecs, config.MaxRefreshSecs))
	}
	if o.HistoryLength < 2 {
		errs = append(errs, errors.New("history length must be at least 2"))
	}
	switch strings.ToLower(o.Connection.SSLMode) {
	case connection.SSLModeAuto, connection.SSLModeDisable, connection.SSLModeRequire,
		connection.SSLModeVerifyCA, connection.SSLModeVerifyFull, "allow", "prefer":
		o.Connection.SSLMode = strings.ToLower(o.Connection.SSLMode)
	default:
		errs = append(errs, fmt.Errorf("unknown sslmode %q", o.Connection.SSLMode))
	}
	return errors.Join(errs...)
}

// Replay reports whether the session replays a file instead of connecting.
func (o *Options) Replay() bool {
	return o.ReplayPath != ""
}
