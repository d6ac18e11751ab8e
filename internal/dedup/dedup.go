// Package dedup decides whether a ticker already holds a fresh snapshot
// inside the freshness window, so a run refreshes rows instead of stacking
// duplicates.
package dedup

import (
	"context"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"marketsnap/pkg/exception"
)

// DefaultWindow is the freshness window applied when none is configured.
const DefaultWindow = 24 * time.Hour

// Store is the slice of the snapshot store the resolver needs.
type Store interface {
	RecentID(ctx context.Context, ticker string, window time.Duration) (uint, error)
	MissingSince(ctx context.Context, tickers []string, window time.Duration) ([]string, error)
}

// Resolver answers freshness questions against one store. Store failures are
// never fatal here: the resolver fails open and reports tickers as stale so
// ingestion keeps moving.
type Resolver struct {
	store  Store
	window time.Duration
}

// NewResolver creates a resolver. A non-positive window selects
// DefaultWindow.
func NewResolver(store Store, window time.Duration) *Resolver {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Resolver{store: store, window: window}
}

// Window reports the freshness window in use.
func (r *Resolver) Window() time.Duration {
	return r.window
}

// Recent returns the id of the fresh row a new capture should supersede and
// whether one exists. A store failure logs and reports no fresh row.
func (r *Resolver) Recent(ctx context.Context, ticker string) (uint, bool) {
	id, err := r.store.RecentID(ctx, ticker, r.window)
	if err != nil {
		if !errors.Is(err, exception.ErrStoreNoRows) {
			logs.Errorf("check fresh row, ticker: %s, err: %+v", ticker, err)
		}
		return 0, false
	}

	return id, true
}

// IsFresh reports whether ticker already has a row inside the window.
func (r *Resolver) IsFresh(ctx context.Context, ticker string) bool {
	_, ok := r.Recent(ctx, ticker)
	return ok
}

// Filter returns the tickers still due for ingestion, in input order, using
// a single store round trip. A store failure logs and returns the full input
// unchanged.
func (r *Resolver) Filter(ctx context.Context, tickers []string) []string {
	if len(tickers) == 0 {
		return nil
	}

	missing, err := r.store.MissingSince(ctx, tickers, r.window)
	if err != nil {
		logs.Errorf("filter fresh tickers, err: %+v", err)
		return tickers
	}

	return missing
}
