package models

import "fmt"

// ConnectionConfig represents a PostgreSQL connection configuration
type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	SSLMode  string `yaml:"ssl_mode"`

	SSLRootCert string `yaml:"ssl_root_cert"`
	SSLCert     string `yaml:"ssl_cert"`
	SSLKey      string `yaml:"ssl_key"`

	// ConnString, when set, takes precedence over the individual fields.
	ConnString string `yaml:"-"`
}

// ConnectionInfo is the display form of the connection shown in the header bar
// and written to recording headers.
type ConnectionInfo struct {
	Host     string
	Port     int
	Database string
	User     string
	SSLLabel string
}

// Display formats host:port/dbname.
func (c ConnectionInfo) Display() string {
	return fmt.Sprintf("%s:%d/%s", c.Host, c.Port, c.Database)
}
