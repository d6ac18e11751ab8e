// Package fetch retrieves raw metric snapshots from the market data
// provider. Payloads stay loosely typed here; the normalize package owns
// all typing and validation.
package fetch

import (
	"context"
	"time"
)

// RawSnapshot is one provider payload for one ticker, captured before any
// cleaning. Info holds the provider's field set keyed by its native names.
type RawSnapshot struct {
	Ticker     string
	CapturedAt time.Time
	Info       map[string]any
}

// Get returns the raw value for a provider field, or nil when absent.
func (r RawSnapshot) Get(key string) any {
	return r.Info[key]
}

// Client is the market data provider surface. FetchMany issues the
// combined whole-batch request and fails as a unit; FetchOne retrieves a
// single ticker.
type Client interface {
	FetchOne(ctx context.Context, ticker string) (RawSnapshot, error)
	FetchMany(ctx context.Context, tickers []string) ([]RawSnapshot, error)
}

// Egress is opaque network configuration handed through to the provider
// client. The pipeline never inspects it.
type Egress struct {
	Enabled  bool
	ProxyURL string
}
