// Package perf keeps recent request and query timings in memory for the
// operator snapshot endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 5000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Label      string // route pattern for requests, statement summary for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	At         time.Time
}

// Collector is a fixed-size ring buffer of timing entries. When full the
// oldest entries are overwritten. Aggregation happens on read only.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	total   atomic.Int64
}

// NewCollector creates a collector holding up to size entries.
// PRE: size > 0, otherwise DefaultRingSize is used
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.next] = e
	c.next = (c.next + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// Stat aggregates timings for one label.
type Stat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avgMs"`
	MaxMs float64 `json:"maxMs"`
	sumMs float64
}

// Snapshot is the aggregated view served to operators.
type Snapshot struct {
	Since          time.Time `json:"since"`
	TotalRecorded  int64     `json:"totalRecorded"`
	Requests       int       `json:"requests"`
	ServerErrors   int       `json:"serverErrors"`
	RequestP50Ms   float64   `json:"requestP50Ms"`
	RequestP95Ms   float64   `json:"requestP95Ms"`
	RequestP99Ms   float64   `json:"requestP99Ms"`
	SlowestRoutes  []Stat    `json:"slowestRoutes"`
	SlowestQueries []Stat    `json:"slowestQueries"`
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN > 0
// POST: Stat lists hold at most topN items, slowest average first
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	snap := Snapshot{Since: since, TotalRecorded: c.TotalRecorded()}
	var durations []float64
	routes := make(map[string]*Stat)
	queries := make(map[string]*Stat)

	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		target := queries
		if e.Kind == KindRequest {
			target = routes
			durations = append(durations, e.DurationMs)
			snap.Requests++
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		}
		s, ok := target[e.Label]
		if !ok {
			s = &Stat{Label: e.Label}
			target[e.Label] = s
		}
		s.Count++
		s.sumMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
	}

	snap.SlowestRoutes = slowest(routes, topN)
	snap.SlowestQueries = slowest(queries, topN)
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = quantile(durations, 0.50)
		snap.RequestP95Ms = quantile(durations, 0.95)
		snap.RequestP99Ms = quantile(durations, 0.99)
	}
	return snap
}

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func slowest(stats map[string]*Stat, n int) []Stat {
	out := make([]Stat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.sumMs / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Label < out[j].Label
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
