// Package yahoo implements the market data provider client against the
// public quote endpoints.
package yahoo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketsnap/internal/fetch"
	"marketsnap/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	_baseUrl = "https://query1.finance.yahoo.com"

	quoteSummaryPath = "/v10/finance/quoteSummary/"
	bulkQuotePath    = "/v7/finance/quote"

	summaryModules = "assetProfile,price,summaryDetail,financialData,defaultKeyStatistics"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	requestTimeout = 15 * time.Second

	// Payloads with fewer usable fields than this are treated as a failed
	// retrieval rather than saved as a nearly empty row.
	minInfoFields = 10
)

var _ fetch.Client = (*Client)(nil)

// Client fetches snapshots over HTTP. Each worker owns its own instance.
type Client struct {
	http    *http.Client
	baseURL string
}

// New builds a client. The egress configuration is consumed opaquely: when
// enabled, all requests are routed through the configured proxy.
func New(egress fetch.Egress) *Client {
	transport := &http.Transport{}
	if egress.Enabled && egress.ProxyURL != "" {
		proxy, err := url.Parse(egress.ProxyURL)
		if err != nil {
			logs.Errorf("parse proxy url, using direct egress, err: %+v", err)
		} else {
			transport.Proxy = http.ProxyURL(proxy)
			logs.Info("provider egress routed through proxy")
		}
	}

	return &Client{
		baseURL: _baseUrl,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}
}

// FetchOne retrieves the full metric set for a single ticker.
func (c *Client) FetchOne(ctx context.Context, ticker string) (fetch.RawSnapshot, error) {
	if c == nil {
		return fetch.RawSnapshot{}, exception.ErrNilInstance
	}
	if ticker == "" {
		return fetch.RawSnapshot{}, errors.Wrap(exception.ErrInvalidArgument, "empty ticker")
	}

	endpoint := c.baseURL + quoteSummaryPath + url.PathEscape(ticker) + "?modules=" + url.QueryEscape(summaryModules)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return fetch.RawSnapshot{}, errors.Wrap(err, "request quote summary").With("ticker", ticker)
	}

	info, err := decodeQuoteSummary(body)
	if err != nil {
		return fetch.RawSnapshot{}, errors.Wrap(err, "decode quote summary").With("ticker", ticker)
	}
	if len(info) < minInfoFields {
		return fetch.RawSnapshot{}, errors.Wrapf(exception.ErrFetchInsufficientData, "ticker: %s, fields: %d", ticker, len(info))
	}

	return fetch.RawSnapshot{Ticker: ticker, CapturedAt: time.Now().UTC(), Info: info}, nil
}

// FetchMany retrieves the whole batch with one combined quote request. Any
// transport or envelope failure fails the batch as a unit; callers degrade
// to FetchOne per ticker.
func (c *Client) FetchMany(ctx context.Context, tickers []string) ([]fetch.RawSnapshot, error) {
	if c == nil {
		return nil, exception.ErrNilInstance
	}
	if len(tickers) == 0 {
		return nil, exception.ErrFetchEmptyBatch
	}

	escaped := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		escaped = append(escaped, url.QueryEscape(ticker))
	}

	endpoint := c.baseURL + bulkQuotePath + "?symbols=" + strings.Join(escaped, ",")
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "request bulk quote")
	}

	quotes, err := decodeBulkQuote(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode bulk quote")
	}

	capturedAt := time.Now().UTC()
	snaps := make([]fetch.RawSnapshot, 0, len(quotes))
	for _, info := range quotes {
		symbol, _ := info["symbol"].(string)
		if symbol == "" {
			continue
		}
		if len(info) < minInfoFields {
			logs.Errorf("fetch %s: insufficient data in bulk quote, fields: %d", symbol, len(info))
			continue
		}
		snaps = append(snaps, fetch.RawSnapshot{
			Ticker:     strings.ToUpper(symbol),
			CapturedAt: capturedAt,
			Info:       info,
		})
	}
	return snaps, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(exception.ErrFetchBadStatus, "status: %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, exception.ErrFetchEmptyPayload
	}
	return body, nil
}
