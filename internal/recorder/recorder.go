// Package recorder writes monitoring sessions to newline-delimited JSON files
// and manages the recordings directory.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/pgglance/internal/models"
)

// Record line types.
const (
	LineHeader   = "header"
	LineSnapshot = "snapshot"
)

// Header is the first line of every recording.
type Header struct {
	Type       string            `json:"type"`
	SessionID  string            `json:"session_id,omitempty"`
	Host       string            `json:"host"`
	Port       int               `json:"port"`
	DBName     string            `json:"dbname"`
	User       string            `json:"user"`
	ServerInfo models.ServerInfo `json:"server_info"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// SnapshotLine is every line after the header.
type SnapshotLine struct {
	Type string           `json:"type"`
	Data *models.Snapshot `json:"data"`
}

// Recorder appends snapshots of one session to a recording file.
type Recorder struct {
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
	path   string
}

// New creates a recording for conn in dir (the default directory when dir
// is empty) and writes its header.
func New(conn models.ConnectionInfo, info models.ServerInfo, dir string) (*Recorder, error) {
	dir = Dir(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}
	return NewWithPath(filepath.Join(dir, FileName(conn.Host, conn.Port, time.Now())), conn, info)
}

// NewWithPath creates a recording at an explicit path.
func NewWithPath(path string, conn models.ConnectionInfo, info models.ServerInfo) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	w := bufio.NewWriter(file)
	r := &Recorder{file: file, writer: w, enc: json.NewEncoder(w), path: path}

	header := Header{
		Type:       LineHeader,
		SessionID:  uuid.NewString(),
		Host:       conn.Host,
		Port:       conn.Port,
		DBName:     conn.Database,
		User:       conn.User,
		ServerInfo: info,
		RecordedAt: time.Now().UTC(),
	}
	if err := r.write(header); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write recording header: %w", err)
	}
	return r, nil
}

// FileName builds "{host}_{port}_{YYYYmmdd_HHMMSS}.jsonl" in local time with
// path separators replaced.
func FileName(host string, port int, at time.Time) string {
	name := fmt.Sprintf("%s_%d_%s.jsonl", host, port, at.Local().Format("20060102_150405"))
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}

// Path returns the file being written.
func (r *Recorder) Path() string {
	return r.path
}

// Record appends one snapshot and flushes it to disk.
func (r *Recorder) Record(snap *models.Snapshot) error {
	return r.write(SnapshotLine{Type: LineSnapshot, Data: snap})
}

// Encoder.Encode terminates each value with a newline.
func (r *Recorder) write(v any) error {
	if err := r.enc.Encode(v); err != nil {
		return err
	}
	return r.writer.Flush()
}

// Close flushes and closes the recording.
func (r *Recorder) Close() error {
	if err := r.writer.Flush(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}
