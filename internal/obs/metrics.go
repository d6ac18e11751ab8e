// Package obs collects lightweight counters and latency stats for a run.
package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects one worker's counters and latency stats. All methods are
// safe for concurrent use.
type Metrics struct {
	fetched       uint64
	saved         uint64
	failed        uint64
	failedBatches uint64

	fetchLatency LatencyStats
	writeLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Fetched       uint64
	Saved         uint64
	Failed        uint64
	FailedBatches uint64
	FetchLatency  LatencySnapshot
	WriteLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// AddFetched records successfully fetched snapshots.
func (m *Metrics) AddFetched(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.fetched, uint64(n))
}

// AddSaved records successfully persisted snapshots.
func (m *Metrics) AddSaved(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.saved, uint64(n))
}

// AddFailed records tickers that could not be fetched or saved.
func (m *Metrics) AddFailed(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.failed, uint64(n))
}

// IncFailedBatch records a batch that yielded nothing.
func (m *Metrics) IncFailedBatch() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.failedBatches, 1)
}

// ObserveFetch measures one provider retrieval call.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchLatency.Observe(d)
}

// ObserveWrite measures one store save call.
func (m *Metrics) ObserveWrite(d time.Duration) {
	if m == nil {
		return
	}
	m.writeLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Fetched:       atomic.LoadUint64(&m.fetched),
		Saved:         atomic.LoadUint64(&m.saved),
		Failed:        atomic.LoadUint64(&m.failed),
		FailedBatches: atomic.LoadUint64(&m.failedBatches),
		FetchLatency:  m.fetchLatency.Snapshot(),
		WriteLatency:  m.writeLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
