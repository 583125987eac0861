package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot tests aggregation of requests and queries.
func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Label: "POST /register", StatusCode: 303, DurationMs: 10, At: now})
	c.Record(Entry{Kind: KindRequest, Label: "POST /register", StatusCode: 500, DurationMs: 30, At: now})
	c.Record(Entry{Kind: KindRequest, Label: "GET /events", StatusCode: 200, DurationMs: 2, At: now})
	c.Record(Entry{Kind: KindQuery, Label: "INSERT participant", DurationMs: 5, At: now})
	c.Record(Entry{Kind: KindRequest, Label: "GET /old", DurationMs: 900, At: now.Add(-time.Hour)})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 5 {
		t.Errorf("TotalRecorded = %d, want 5", snap.TotalRecorded)
	}
	if snap.Requests != 3 || snap.ServerErrors != 1 {
		t.Errorf("Requests = %d, ServerErrors = %d", snap.Requests, snap.ServerErrors)
	}
	if len(snap.SlowestRoutes) != 2 || snap.SlowestRoutes[0].Label != "POST /register" {
		t.Fatalf("SlowestRoutes = %+v", snap.SlowestRoutes)
	}
	if snap.SlowestRoutes[0].AvgMs != 20 || snap.SlowestRoutes[0].MaxMs != 30 {
		t.Errorf("register stat = %+v", snap.SlowestRoutes[0])
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Count != 1 {
		t.Errorf("SlowestQueries = %+v", snap.SlowestQueries)
	}
}

// TestCollector_RingOverwrites tests that only the newest entries survive.
func TestCollector_RingOverwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Label: "GET /x", DurationMs: float64(i), At: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.SlowestRoutes[0].Count != 3 {
		t.Errorf("Count = %d, want 3", snap.SlowestRoutes[0].Count)
	}
	if snap.SlowestRoutes[0].AvgMs != 3 {
		t.Errorf("AvgMs = %v, want 3 (entries 2,3,4)", snap.SlowestRoutes[0].AvgMs)
	}
}

// TestCollector_Quantiles tests the percentile interpolation.
func TestCollector_Quantiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 101; i++ {
		c.Record(Entry{Kind: KindRequest, Label: "GET /p", DurationMs: float64(i), At: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 1)
	if snap.RequestP50Ms != 51 {
		t.Errorf("P50 = %v, want 51", snap.RequestP50Ms)
	}
	if snap.RequestP95Ms != 96 {
		t.Errorf("P95 = %v, want 96", snap.RequestP95Ms)
	}
	if snap.RequestP99Ms != 100 {
		t.Errorf("P99 = %v, want 100", snap.RequestP99Ms)
	}
}

// TestCollector_ConcurrentRecord tests Record under the race detector.
func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(Entry{Kind: KindQuery, Label: "SELECT event", DurationMs: 1, At: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}
