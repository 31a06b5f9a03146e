package discovery

import (
	"os"
	"strconv"

	"github.com/rebeliceyang/pgglance/internal/models"
)

const defaultPort = 5432

// EnvironmentConfig builds the default connection from libpq environment
// variables. Missing values fall back to localhost:5432, the current OS user
// and a database named after the user.
func EnvironmentConfig() models.ConnectionConfig {
	host := os.Getenv("PGHOST")
	if host == "" {
		host = "localhost"
	}

	user := os.Getenv("PGUSER")
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		user = "postgres"
	}

	database := os.Getenv("PGDATABASE")
	if database == "" {
		database = user
	}

	return models.ConnectionConfig{
		Host:     host,
		Port:     parsePort(os.Getenv("PGPORT")),
		Database: database,
		User:     user,
		Password: os.Getenv("PGPASSWORD"),
		SSLMode:  os.Getenv("PGSSLMODE"),
	}
}

func parsePort(s string) int {
	if s == "" {
		return defaultPort
	}
	if p, err := strconv.Atoi(s); err == nil && p > 0 && p <= 65535 {
		return p
	}
	return defaultPort
}
