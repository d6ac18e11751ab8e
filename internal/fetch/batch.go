package fetch

import (
	"context"
	"time"

	"github.com/yanun0323/logs"
)

const defaultDelay = 100 * time.Millisecond

// BatchFetcher retrieves one batch of tickers at a time. It never returns
// an error: single-ticker failures are skipped, logged and counted, and a
// failed whole-batch request degrades to sequential per-ticker retrieval.
type BatchFetcher struct {
	client Client
	delay  time.Duration
}

// NewBatchFetcher wraps a provider client. The delay paces sequential
// per-ticker calls; a negative value falls back to the default.
func NewBatchFetcher(client Client, delay time.Duration) *BatchFetcher {
	if delay < 0 {
		delay = defaultDelay
	}
	return &BatchFetcher{client: client, delay: delay}
}

// Fetch returns the successfully retrieved subset of the batch and the
// number of tickers that failed. An empty result with failed == len(batch)
// means the provider was unreachable for every ticker.
func (f *BatchFetcher) Fetch(ctx context.Context, batch []string) ([]RawSnapshot, int) {
	if len(batch) == 0 {
		return nil, 0
	}
	if f == nil || f.client == nil {
		logs.Errorf("batch fetcher has no client, dropping %d tickers", len(batch))
		return nil, len(batch)
	}

	snaps, err := f.client.FetchMany(ctx, batch)
	if err == nil {
		missing := missingTickers(batch, snaps)
		for _, ticker := range missing {
			logs.Errorf("fetch %s: missing from batch response", ticker)
		}
		return snaps, len(missing)
	}

	logs.Errorf("batch fetch failed for %v, falling back to per-ticker, err: %+v", batch, err)
	return f.fetchSequential(ctx, batch)
}

func (f *BatchFetcher) fetchSequential(ctx context.Context, batch []string) ([]RawSnapshot, int) {
	var (
		snaps  []RawSnapshot
		failed int
	)
	for i, ticker := range batch {
		if i > 0 && f.delay > 0 {
			time.Sleep(f.delay)
		}

		snap, err := f.client.FetchOne(ctx, ticker)
		if err != nil {
			failed++
			logs.Errorf("fetch %s, err: %+v", ticker, err)
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, failed
}

func missingTickers(batch []string, snaps []RawSnapshot) []string {
	got := make(map[string]struct{}, len(snaps))
	for _, snap := range snaps {
		got[snap.Ticker] = struct{}{}
	}

	var missing []string
	for _, ticker := range batch {
		if _, ok := got[ticker]; !ok {
			missing = append(missing, ticker)
		}
	}
	return missing
}
