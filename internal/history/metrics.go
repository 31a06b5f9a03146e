package history

import (
	"time"

	"github.com/rebeliceyang/pgglance/internal/models"
)

// counters is the subset of a snapshot kept for the next rate computation.
type counters struct {
	at           time.Time
	xactCommit   int64
	xactRollback int64
	blksRead     int64
	walBytes     *int64
}

// Metrics holds the rolling series drawn in the graph row.
type Metrics struct {
	Connections   *Ring[int64]
	AvgQueryMs    *Ring[float64]
	HitRatio      *Ring[float64] // per mille
	ActiveQueries *Ring[int64]
	LockCount     *Ring[int64]
	TPS           *Ring[float64]
	WalRate       *Ring[float64] // KB/s
	BlksReadRate  *Ring[float64]

	CurrentTPS          *float64
	CurrentWalRate      *float64 // bytes/s
	CurrentBlksReadRate *float64

	prev *counters
}

// NewMetrics allocates every series with the same capacity.
func NewMetrics(capacity int) *Metrics {
	return &Metrics{
		Connections:   NewRing[int64](capacity),
		AvgQueryMs:    NewRing[float64](capacity),
		HitRatio:      NewRing[float64](capacity),
		ActiveQueries: NewRing[int64](capacity),
		LockCount:     NewRing[int64](capacity),
		TPS:           NewRing[float64](capacity),
		WalRate:       NewRing[float64](capacity),
		BlksReadRate:  NewRing[float64](capacity),
	}
}

// Push records the gauges of snap and derives rates against the previous
// snapshot carrying database counters.
func (m *Metrics) Push(snap *models.Snapshot) {
	m.Connections.Push(snap.Summary.TotalBackends)
	m.AvgQueryMs.Push(averageQueryMs(snap.ActiveQueries))
	m.HitRatio.Push(snap.BufferCache.HitRatio * 1000)
	m.ActiveQueries.Push(snap.Summary.ActiveQueryCount)
	m.LockCount.Push(snap.Summary.LockCount)
	m.calculateRates(snap)
}

func averageQueryMs(queries []models.ActiveQuery) float64 {
	var sum float64
	var n int
	for _, q := range queries {
		if q.State == nil {
			continue
		}
		if *q.State == "active" || *q.State == "idle in transaction" {
			sum += q.DurationSecs
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 1000
}

// calculateRates computes counter deltas. A tick is skipped when no time has
// elapsed or a counter went backwards (stats reset, server restart).
func (m *Metrics) calculateRates(snap *models.Snapshot) {
	curr := snap.DBStats
	if m.prev != nil && curr != nil {
		secs := float64(snap.Timestamp.Sub(m.prev.at).Milliseconds()) / 1000
		if secs > 0 {
			commits := curr.XactCommit - m.prev.xactCommit
			rollbacks := curr.XactRollback - m.prev.xactRollback
			if commits >= 0 && rollbacks >= 0 {
				tps := float64(commits+rollbacks) / secs
				m.CurrentTPS = &tps
				m.TPS.Push(tps)
			}

			if blks := curr.BlksRead - m.prev.blksRead; blks >= 0 {
				rate := float64(blks) / secs
				m.CurrentBlksReadRate = &rate
				m.BlksReadRate.Push(rate)
			}

			if snap.WalStats != nil && m.prev.walBytes != nil {
				if bytes := snap.WalStats.WalBytes - *m.prev.walBytes; bytes >= 0 {
					rate := float64(bytes) / secs
					m.CurrentWalRate = &rate
					m.WalRate.Push(rate / 1024)
				}
			}
		}
	}

	if curr == nil {
		return
	}
	next := &counters{
		at:           snap.Timestamp,
		xactCommit:   curr.XactCommit,
		xactRollback: curr.XactRollback,
		blksRead:     curr.BlksRead,
	}
	if snap.WalStats != nil {
		wal := snap.WalStats.WalBytes
		next.walBytes = &wal
	}
	m.prev = next
}
