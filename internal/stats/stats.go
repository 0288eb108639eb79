// Package stats keeps rolling-window latency figures for search queries.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at      time.Time
	latency time.Duration
	hits    int
}

// Snapshot aggregates the samples currently inside the window.
type Snapshot struct {
	Count      int     `json:"count"`
	ZeroHits   int     `json:"zero_hits"`
	AvgHits    float64 `json:"avg_hits"`
	MinMs      float64 `json:"min_ms"`
	MaxMs      float64 `json:"max_ms"`
	AvgMs      float64 `json:"avg_ms"`
	P50Ms      float64 `json:"p50_ms"`
	P95Ms      float64 `json:"p95_ms"`
	P99Ms      float64 `json:"p99_ms"`
	WindowSecs float64 `json:"window_seconds"`
}

// Window tracks search latencies and hit counts over a rolling period.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one search. Negative values are clamped to zero.
func (w *Window) Record(latency time.Duration, hits int) {
	latency = max(latency, 0)
	hits = max(hits, 0)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, latency: latency, hits: hits})
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(w.now())
	snap := Snapshot{WindowSecs: w.maxAge.Seconds()}
	if len(w.samples) == 0 {
		return snap
	}

	ms := make([]float64, 0, len(w.samples))
	var sumMs float64
	var sumHits int
	for _, s := range w.samples {
		v := float64(s.latency) / float64(time.Millisecond)
		ms = append(ms, v)
		sumMs += v
		sumHits += s.hits
		if s.hits == 0 {
			snap.ZeroHits++
		}
	}
	slices.Sort(ms)

	n := float64(len(ms))
	snap.Count = len(ms)
	snap.AvgHits = float64(sumHits) / n
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = sumMs / n
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
