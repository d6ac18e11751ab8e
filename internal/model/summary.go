package model

import "time"

// WorkerStats is one worker's view of its run: counters accumulated while
// processing its assigned batches, frozen when the worker reaches a
// terminal state.
type WorkerStats struct {
	WorkerID      int     `json:"worker_id"`
	Batches       int     `json:"batches"`
	Fetched       int     `json:"fetched"`
	Saved         int     `json:"saved"`
	Failed        int     `json:"failed"`
	FailedBatches int     `json:"failed_batches"`
	DurationSec   float64 `json:"duration_sec"`
	AvgFetchMs    float64 `json:"avg_fetch_ms"`
	AvgWriteMs    float64 `json:"avg_write_ms"`
	State         string  `json:"state"`
	Fallback      bool    `json:"fallback,omitempty"`
}

// RunSummary is the durable end-of-run artifact: aggregate counters plus the
// per-worker breakdown. Written once at run end, never mutated after.
//
// Fetched/Saved/Failed/FailedBatches are plain sums over PerWorker. Failed
// counts individual tickers that could not be fetched or saved; FailedBatches
// counts batches that yielded nothing from the provider or saved nothing to
// the store. FallbackMode marks runs whose "saved" counts never touched
// storage.
type RunSummary struct {
	RunID         string        `json:"run_id"`
	Timestamp     time.Time     `json:"timestamp"`
	Workers       int           `json:"workers"`
	BatchSize     int           `json:"batch_size"`
	WindowHours   int           `json:"window_hours"`
	Tickers       int           `json:"tickers"`
	Batches       int           `json:"batches"`
	Fetched       int           `json:"fetched"`
	Saved         int           `json:"saved"`
	Failed        int           `json:"failed"`
	FailedBatches int           `json:"failed_batches"`
	DurationSec   float64       `json:"duration_sec"`
	FallbackMode  bool          `json:"fallback_mode"`
	PerWorker     []WorkerStats `json:"per_worker"`
}

// Absorb folds one worker's counters into the aggregate.
func (s *RunSummary) Absorb(ws WorkerStats) {
	s.Fetched += ws.Fetched
	s.Saved += ws.Saved
	s.Failed += ws.Failed
	s.FailedBatches += ws.FailedBatches
	s.FallbackMode = s.FallbackMode || ws.Fallback
	s.PerWorker = append(s.PerWorker, ws)
}
