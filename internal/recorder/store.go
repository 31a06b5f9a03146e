package recorder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/iter"
)

const extension = ".jsonl"

// DefaultDir returns <data dir>/pgglance/recordings. The data directory is
// $XDG_DATA_HOME, else ~/.local/share, else the working directory.
func DefaultDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".local", "share")
		} else {
			base = "."
		}
	}
	return filepath.Join(base, "pgglance", "recordings")
}

// Dir returns custom, or the default directory when custom is empty.
func Dir(custom string) string {
	if custom == "" {
		return DefaultDir()
	}
	return custom
}

// RecordingInfo describes a recording from its header line.
type RecordingInfo struct {
	Path       string
	SessionID  string
	Host       string
	Port       int
	DBName     string
	RecordedAt time.Time
	PGVersion  string
	FileSize   int64
}

// ConnectionDisplay formats host:port/dbname.
func (r RecordingInfo) ConnectionDisplay() string {
	return fmt.Sprintf("%s:%d/%s", r.Host, r.Port, r.DBName)
}

// SizeDisplay formats the file size in IEC units, e.g. "2.0 MiB".
func (r RecordingInfo) SizeDisplay() string {
	if r.FileSize < 0 {
		return humanize.IBytes(0)
	}
	return humanize.IBytes(uint64(r.FileSize))
}

// PGVersionShort turns "PostgreSQL 15.3 on ..." into "PG 15". Anything else
// is cut to its first 10 characters.
func (r RecordingInfo) PGVersionShort() string {
	if rest, ok := strings.CutPrefix(r.PGVersion, "PostgreSQL "); ok {
		major, _, _ := strings.Cut(rest, ".")
		major, _, _ = strings.Cut(major, " ")
		return "PG " + major
	}
	runes := []rune(r.PGVersion)
	if len(runes) > 10 {
		runes = runes[:10]
	}
	return string(runes)
}

// Age renders how long ago the session was recorded, e.g. "3 hours ago".
func (r RecordingInfo) Age() string {
	return humanize.Time(r.RecordedAt)
}

// List returns the recordings in dir, newest first. Only the header line of
// each file is read; files without a valid header are skipped.
func List(dir string) []RecordingInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	type listed struct {
		info RecordingInfo
		ok   bool
	}
	headers := iter.Map(paths, func(path *string) listed {
		info, err := readInfo(*path)
		return listed{info, err == nil}
	})

	var recordings []RecordingInfo
	for _, h := range headers {
		if h.ok {
			recordings = append(recordings, h.info)
		}
	}

	slices.SortFunc(recordings, func(a, b RecordingInfo) int {
		return b.RecordedAt.Compare(a.RecordedAt)
	})
	return recordings
}

func readInfo(path string) (RecordingInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return RecordingInfo{}, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return RecordingInfo{}, err
	}

	var line []byte
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for len(line) == 0 && scanner.Scan() {
		line = bytes.TrimSpace(scanner.Bytes())
	}
	if len(line) == 0 {
		if err := scanner.Err(); err != nil {
			return RecordingInfo{}, err
		}
		return RecordingInfo{}, fmt.Errorf("empty recording")
	}

	var header Header
	if err := json.Unmarshal(line, &header); err != nil {
		return RecordingInfo{}, err
	}
	if header.Type != LineHeader {
		return RecordingInfo{}, fmt.Errorf("first line is %q, not a header", header.Type)
	}

	return RecordingInfo{
		Path:       path,
		SessionID:  header.SessionID,
		Host:       header.Host,
		Port:       header.Port,
		DBName:     header.DBName,
		RecordedAt: header.RecordedAt,
		PGVersion:  header.ServerInfo.Version,
		FileSize:   stat.Size(),
	}, nil
}

// Delete removes a recording file.
func Delete(path string) error {
	return os.Remove(path)
}

// CleanupOld removes recordings in dir last modified more than maxAge ago.
// Files without the .jsonl extension are left alone. Returns how many files
// were removed.
func CleanupOld(maxAge time.Duration, dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	now := time.Now()
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			if os.Remove(filepath.Join(dir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed
}
