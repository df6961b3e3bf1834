// Package stats tracks process-wide routing counters. A Tracker is injected
// into the router rather than living as a package singleton, so tests can
// reset it and concurrent routers can share one.
package stats

import "sync/atomic"

// Tracker holds the routing counters. All updates are atomic; it is safe for
// concurrent use without external locking.
type Tracker struct {
	totalQueries   atomic.Int64
	securityBlocks atomic.Int64
	searchBypassed atomic.Int64
	searchUsed     atomic.Int64
	searchFailed   atomic.Int64
	fallbacksUsed  atomic.Int64
}

// Snapshot is a read-only copy of the counters at one point in time.
type Snapshot struct {
	TotalQueries   int64 `json:"total_queries"`
	SecurityBlocks int64 `json:"security_blocks"`
	SearchBypassed int64 `json:"search_bypassed"`
	SearchUsed     int64 `json:"search_used"`
	SearchFailed   int64 `json:"search_failed"`
	FallbacksUsed  int64 `json:"fallbacks_used"`
}

// NewTracker returns a zeroed tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) RecordQuery()         { t.totalQueries.Add(1) }
func (t *Tracker) RecordSecurityBlock() { t.securityBlocks.Add(1) }
func (t *Tracker) RecordSearchBypass()  { t.searchBypassed.Add(1) }
func (t *Tracker) RecordSearchUsed()    { t.searchUsed.Add(1) }
func (t *Tracker) RecordSearchFailed()  { t.searchFailed.Add(1) }
func (t *Tracker) RecordFallback()      { t.fallbacksUsed.Add(1) }

// Snapshot returns the current counter values. Calling it twice without an
// intervening query returns identical snapshots.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		TotalQueries:   t.totalQueries.Load(),
		SecurityBlocks: t.securityBlocks.Load(),
		SearchBypassed: t.searchBypassed.Load(),
		SearchUsed:     t.searchUsed.Load(),
		SearchFailed:   t.searchFailed.Load(),
		FallbacksUsed:  t.fallbacksUsed.Load(),
	}
}

// Reset zeroes every counter. Intended for tests.
func (t *Tracker) Reset() {
	t.totalQueries.Store(0)
	t.securityBlocks.Store(0)
	t.searchBypassed.Store(0)
	t.searchUsed.Store(0)
	t.searchFailed.Store(0)
	t.fallbacksUsed.Store(0)
}
