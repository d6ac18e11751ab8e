package obs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.AddFetched(9)
	m.AddFetched(1)
	m.AddSaved(8)
	m.AddFailed(2)
	m.IncFailedBatch()

	snap := m.Snapshot()
	assert.Equal(t, uint64(10), snap.Fetched)
	assert.Equal(t, uint64(8), snap.Saved)
	assert.Equal(t, uint64(2), snap.Failed)
	assert.Equal(t, uint64(1), snap.FailedBatches)
}

func TestMetricsIgnoresNonPositive(t *testing.T) {
	m := NewMetrics()

	m.AddFetched(0)
	m.AddSaved(-3)

	snap := m.Snapshot()
	assert.Zero(t, snap.Fetched)
	assert.Zero(t, snap.Saved)
}

func TestLatencyStats(t *testing.T) {
	m := NewMetrics()

	m.ObserveFetch(10 * time.Millisecond)
	m.ObserveFetch(20 * time.Millisecond)
	m.ObserveFetch(30 * time.Millisecond)

	snap := m.Snapshot().FetchLatency
	assert.Equal(t, uint64(3), snap.Count)
	assert.Equal(t, 10*time.Millisecond, snap.Min)
	assert.Equal(t, 30*time.Millisecond, snap.Max)
	assert.Equal(t, 20*time.Millisecond, snap.Avg)
}

func TestLatencyStatsEmpty(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, LatencySnapshot{}, m.Snapshot().WriteLatency)
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics

	m.AddFetched(1)
	m.AddSaved(1)
	m.AddFailed(1)
	m.IncFailedBatch()
	m.ObserveFetch(time.Millisecond)
	m.ObserveWrite(time.Millisecond)

	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetricsConcurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.AddFetched(1)
				m.ObserveWrite(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, uint64(800), snap.Fetched)
	assert.Equal(t, uint64(800), snap.WriteLatency.Count)
}
