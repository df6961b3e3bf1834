package stats

import (
	"sync"
	"testing"
)

func TestTracker_Counters(t *testing.T) {
	tr := NewTracker()
	tr.RecordQuery()
	tr.RecordQuery()
	tr.RecordSecurityBlock()
	tr.RecordSearchBypass()
	tr.RecordSearchUsed()
	tr.RecordSearchFailed()
	tr.RecordFallback()

	snap := tr.Snapshot()
	if snap.TotalQueries != 2 {
		t.Errorf("total_queries = %d, want 2", snap.TotalQueries)
	}
	if snap.SecurityBlocks != 1 || snap.SearchBypassed != 1 ||
		snap.SearchUsed != 1 || snap.SearchFailed != 1 || snap.FallbacksUsed != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestTracker_SnapshotIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.RecordQuery()
	a := tr.Snapshot()
	b := tr.Snapshot()
	if a != b {
		t.Errorf("consecutive snapshots differ: %+v vs %+v", a, b)
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	tr.RecordQuery()
	tr.RecordFallback()
	tr.Reset()
	if snap := tr.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("expected zeroed snapshot after reset, got %+v", snap)
	}
}

func TestTracker_ConcurrentUpdates(t *testing.T) {
	tr := NewTracker()
	const goroutines = 32
	const perGoroutine = 100

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				tr.RecordQuery()
				tr.RecordSearchUsed()
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap.TotalQueries != goroutines*perGoroutine {
		t.Errorf("lost updates: total_queries = %d, want %d", snap.TotalQueries, goroutines*perGoroutine)
	}
	if snap.SearchUsed != goroutines*perGoroutine {
		t.Errorf("lost updates: search_used = %d, want %d", snap.SearchUsed, goroutines*perGoroutine)
	}
}
