package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// PgPassEntry represents a line in .pgpass file
type PgPassEntry struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// PgPassPath returns $PGPASSFILE or ~/.pgpass.
func PgPassPath() string {
	if p := os.Getenv("PGPASSFILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

// ParsePgPass reads and parses a .pgpass file. A missing file is not an error.
func ParsePgPass(path string) ([]PgPassEntry, error) {
	if path == "" {
		return nil, nil
	}

	// Check file permissions on non-Windows systems
	if runtime.GOOS != "windows" {
		fileInfo, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}

		mode := fileInfo.Mode()
		if mode.Perm()&0077 != 0 {
			return nil, fmt.Errorf(".pgpass file has insecure permissions %v, must be 0600", mode.Perm())
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []PgPassEntry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parsePgPassLine(line)
		if err != nil {
			continue
		}

		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// parsePgPassLine parses hostname:port:database:username:password,
// honouring the \: and \\ escapes.
func parsePgPassLine(line string) (PgPassEntry, error) {
	parts := make([]string, 0, 5)
	var current strings.Builder
	escaped := false

	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case escaped:
			current.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == ':':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	parts = append(parts, current.String())

	if len(parts) != 5 {
		return PgPassEntry{}, fmt.Errorf("expected 5 fields, got %d", len(parts))
	}

	if parts[1] != "*" {
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return PgPassEntry{}, fmt.Errorf("invalid port: %s", parts[1])
		}
		if p < 1 || p > 65535 {
			return PgPassEntry{}, fmt.Errorf("port out of range: %d", p)
		}
	}

	return PgPassEntry{
		Host:     parts[0],
		Port:     parts[1],
		Database: parts[2],
		User:     parts[3],
		Password: parts[4],
	}, nil
}

// FindPassword returns the password of the first entry matching the
// connection, or "" when none does.
func FindPassword(entries []PgPassEntry, host string, port int, database, user string) string {
	for _, entry := range entries {
		if matches(entry.Host, host) &&
			matches(entry.Port, strconv.Itoa(port)) &&
			matches(entry.Database, database) &&
			matches(entry.User, user) {
			return entry.Password
		}
	}
	return ""
}

// matches checks if pattern matches value (* is wildcard)
func matches(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
