// Package replay loads recordings and steps through their snapshots.
package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rebeliceyang/pgglance/internal/models"
	"github.com/rebeliceyang/pgglance/internal/recorder"
)

var (
	ErrEmptyRecording = errors.New("recording file is empty")
	ErrNoHeader       = errors.New("first line must be a header")
	ErrNoSnapshots    = errors.New("recording contains no snapshots")
)

// maxLineSize bounds one recorded snapshot line.
const maxLineSize = 64 * 1024 * 1024

// Session is a loaded recording and a cursor into its snapshots.
type Session struct {
	Header    recorder.Header
	Snapshots []*models.Snapshot
	position  int
}

// Load reads a recording. The first line must be a header; blank lines are
// skipped and any malformed line fails the load.
func Load(path string) (*Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	// The first non-blank line is the header.
	var first []byte
	lineNo := 0
	for first == nil && scanner.Scan() {
		lineNo++
		if line := bytes.TrimSpace(scanner.Bytes()); len(line) > 0 {
			first = line
		}
	}
	if first == nil {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read recording: %w", err)
		}
		return nil, ErrEmptyRecording
	}

	var header recorder.Header
	if err := json.Unmarshal(first, &header); err != nil {
		return nil, fmt.Errorf("failed to parse recording header: %w", err)
	}
	if header.Type != recorder.LineHeader {
		return nil, ErrNoHeader
	}

	s := &Session{Header: header}
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record recorder.SnapshotLine
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNo, err)
		}
		if record.Type == recorder.LineSnapshot && record.Data != nil {
			s.Snapshots = append(s.Snapshots, record.Data)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	if len(s.Snapshots) == 0 {
		return nil, ErrNoSnapshots
	}
	return s, nil
}

// Connection rebuilds the connection shown in the header bar.
func (s *Session) Connection() models.ConnectionInfo {
	return models.ConnectionInfo{
		Host:     s.Header.Host,
		Port:     s.Header.Port,
		Database: s.Header.DBName,
		User:     s.Header.User,
	}
}

func (s *Session) Len() int      { return len(s.Snapshots) }
func (s *Session) Position() int { return s.position }

// Current returns the snapshot under the cursor.
func (s *Session) Current() *models.Snapshot {
	if s.position < 0 || s.position >= len(s.Snapshots) {
		return nil
	}
	return s.Snapshots[s.position]
}

// StepForward moves to the next snapshot, reporting whether it moved.
func (s *Session) StepForward() bool {
	if s.position+1 < len(s.Snapshots) {
		s.position++
		return true
	}
	return false
}

// StepBack moves to the previous snapshot, reporting whether it moved.
func (s *Session) StepBack() bool {
	if s.position > 0 {
		s.position--
		return true
	}
	return false
}

func (s *Session) JumpStart() { s.position = 0 }

func (s *Session) JumpEnd() {
	if len(s.Snapshots) > 0 {
		s.position = len(s.Snapshots) - 1
	}
}

// AtEnd reports whether the cursor is on the last snapshot.
func (s *Session) AtEnd() bool {
	return s.position+1 >= len(s.Snapshots)
}

const (
	minInterval      = 50 * time.Millisecond
	fallbackInterval = 2 * time.Second
)

// Interval is how long playback waits before advancing at speed: the gap to
// the next snapshot's timestamp scaled by speed, or 2s scaled when the
// timestamps are unusable. Never below 50ms.
func (s *Session) Interval(speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	base := fallbackInterval
	if s.position+1 < len(s.Snapshots) {
		gap := s.Snapshots[s.position+1].Timestamp.Sub(s.Snapshots[s.position].Timestamp).Abs()
		if gap.Milliseconds() > 0 {
			base = gap.Truncate(time.Millisecond)
		}
	}
	return max(time.Duration(float64(base)/speed).Truncate(time.Millisecond), minInterval)
}

// Speeds are the playback multipliers cycled by > and <.
var Speeds = []float64{0.25, 0.5, 1, 2, 4, 8}

// NextSpeed returns the first speed faster than current, capped at the fastest.
func NextSpeed(current float64) float64 {
	for _, s := range Speeds {
		if s > current+0.01 {
			return s
		}
	}
	return Speeds[len(Speeds)-1]
}

// PrevSpeed returns the last speed slower than current, floored at the slowest.
func PrevSpeed(current float64) float64 {
	for i := len(Speeds) - 1; i >= 0; i-- {
		if Speeds[i] < current-0.01 {
			return Speeds[i]
		}
	}
	return Speeds[0]
}
