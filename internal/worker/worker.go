// Package worker fans one ingestion run out over a fixed set of workers.
// Batches are dealt round robin at start and never rebalanced; each worker
// owns its provider client and store connection and walks its assignment
// strictly in order.
package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"marketsnap/internal/dedup"
	"marketsnap/internal/fetch"
	"marketsnap/internal/model"
	"marketsnap/internal/model/enum"
	"marketsnap/internal/normalize"
	"marketsnap/internal/obs"
	"marketsnap/internal/writer"
	"marketsnap/pkg/exception"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 10
)

// Store is what one worker needs from the snapshot store: freshness lookups
// for dedup plus writes for persistence.
type Store interface {
	dedup.Store
	writer.Store
	Close() error
}

// Config wires one pool run. Every worker constructs its own client and
// store through the factories, so nothing is shared across goroutines.
type Config struct {
	Workers   int
	BatchSize int
	Window    time.Duration
	Delay     time.Duration
	Bound     float64

	NewClient func() fetch.Client
	NewStore  func(ctx context.Context) Store
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Window <= 0 {
		c.Window = dedup.DefaultWindow
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.NewClient == nil {
		return errors.Wrap(exception.ErrInvalidConfig, "NewClient is nil")
	}
	if c.NewStore == nil {
		return errors.Wrap(exception.ErrInvalidConfig, "NewStore is nil")
	}
	return nil
}

// Chunk splits tickers into consecutive batches of at most size elements.
func Chunk(tickers []string, size int) [][]string {
	if size <= 0 || len(tickers) == 0 {
		return nil
	}

	batches := make([][]string, 0, (len(tickers)+size-1)/size)
	for start := 0; start < len(tickers); start += size {
		end := min(start+size, len(tickers))
		batches = append(batches, tickers[start:end])
	}

	return batches
}

// Distribute deals batch i to worker i mod workers, preserving batch order
// inside each worker's assignment.
func Distribute(batches [][]string, workers int) [][][]string {
	if workers <= 0 {
		workers = 1
	}

	assignments := make([][][]string, workers)
	for i, batch := range batches {
		w := i % workers
		assignments[w] = append(assignments[w], batch)
	}

	return assignments
}

// Pool runs ingestion with fork-join parallelism and merges per-worker
// counters into one RunSummary.
type Pool struct {
	cfg Config
}

// NewPool creates a pool from the given configuration.
func NewPool(cfg Config) (*Pool, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Pool{cfg: cfg}, nil
}

// Run ingests the given tickers and returns the merged summary. Every
// assigned batch is processed by exactly one worker; a faulted worker
// contributes zero counters and never stops the others.
func (p *Pool) Run(ctx context.Context, tickers []string) model.RunSummary {
	start := time.Now()

	summary := model.RunSummary{
		RunID:       uuid.NewString(),
		Timestamp:   start.UTC(),
		Workers:     p.cfg.Workers,
		BatchSize:   p.cfg.BatchSize,
		WindowHours: int(p.cfg.Window.Hours()),
		Tickers:     len(tickers),
	}

	batches := Chunk(tickers, p.cfg.BatchSize)
	summary.Batches = len(batches)
	if len(batches) == 0 {
		summary.DurationSec = time.Since(start).Seconds()
		return summary
	}

	logs.Infof("run %s: %d tickers in %d batches across %d workers",
		summary.RunID, len(tickers), len(batches), p.cfg.Workers)

	assignments := Distribute(batches, p.cfg.Workers)
	results := make(chan model.WorkerStats, len(assignments))

	var wg sync.WaitGroup
	for id, assignment := range assignments {
		wg.Add(1)
		go func(id int, assignment [][]string) {
			defer wg.Done()
			results <- p.runWorker(ctx, id, assignment)
		}(id, assignment)
	}
	wg.Wait()
	close(results)

	for stats := range results {
		summary.Absorb(stats)
	}
	sort.Slice(summary.PerWorker, func(i, j int) bool {
		return summary.PerWorker[i].WorkerID < summary.PerWorker[j].WorkerID
	})

	summary.DurationSec = time.Since(start).Seconds()

	logs.Infof("run %s: fetched %d, saved %d, failed %d in %.1fs",
		summary.RunID, summary.Fetched, summary.Saved, summary.Failed, summary.DurationSec)

	return summary
}

// runWorker returns through a named value so the deferred finalizers still
// shape the result when a panic is recovered.
func (p *Pool) runWorker(ctx context.Context, id int, assignment [][]string) (stats model.WorkerStats) {
	start := time.Now()
	stats = model.WorkerStats{WorkerID: id, Batches: len(assignment)}
	state := enum.WorkerIdle

	defer func() {
		stats.State = state.String()
		stats.DurationSec = time.Since(start).Seconds()
	}()
	defer func() {
		if r := recover(); r != nil {
			state = enum.WorkerFaulted
			logs.Errorf("worker %d: recovered panic: %+v", id, r)
		}
	}()

	client := p.cfg.NewClient()
	db := p.cfg.NewStore(ctx)
	if client == nil || db == nil {
		state = enum.WorkerFaulted
		logs.Errorf("worker %d: dependency construction failed", id)
		return stats
	}
	defer db.Close()

	fetcher := fetch.NewBatchFetcher(client, p.cfg.Delay)
	bulk := writer.NewBulk(db, dedup.NewResolver(db, p.cfg.Window))
	cleaner := normalize.NewNormalizer(p.cfg.Bound)
	metrics := obs.NewMetrics()

	for i, batch := range assignment {
		state = enum.WorkerFetching
		fetchStart := time.Now()
		snaps, failed := fetcher.Fetch(ctx, batch)
		metrics.ObserveFetch(time.Since(fetchStart))
		metrics.AddFetched(len(snaps))
		metrics.AddFailed(failed)

		if len(snaps) == 0 {
			metrics.IncFailedBatch()
			logs.Errorf("worker %d: batch %d/%d yielded nothing", id, i+1, len(assignment))
			continue
		}

		state = enum.WorkerCleaning
		rows := make([]model.Snapshot, 0, len(snaps))
		for _, raw := range snaps {
			rows = append(rows, cleaner.Clean(raw))
		}

		state = enum.WorkerWriting
		writeStart := time.Now()
		res := bulk.Save(ctx, rows)
		metrics.ObserveWrite(time.Since(writeStart))
		metrics.AddSaved(res.Saved)
		metrics.AddFailed(res.Failed)
		if res.Saved == 0 {
			metrics.IncFailedBatch()
		}
		if res.Fallback {
			stats.Fallback = true
		}

		logs.Infof("worker %d: batch %d/%d fetched %d, saved %d",
			id, i+1, len(assignment), len(snaps), res.Saved)
	}

	state = enum.WorkerDone

	snap := metrics.Snapshot()
	stats.Fetched = int(snap.Fetched)
	stats.Saved = int(snap.Saved)
	stats.Failed = int(snap.Failed)
	stats.FailedBatches = int(snap.FailedBatches)
	stats.AvgFetchMs = float64(snap.FetchLatency.Avg) / float64(time.Millisecond)
	stats.AvgWriteMs = float64(snap.WriteLatency.Avg) / float64(time.Millisecond)

	return stats
}
