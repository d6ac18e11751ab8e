package yahoo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsnap/internal/fetch"
	"marketsnap/pkg/exception"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(fetch.Egress{})
	client.baseURL = server.URL
	return client
}

func TestFetchOne(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v10/finance/quoteSummary/AAPL")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(sampleSummary))
	})

	snap, err := client.FetchOne(t.Context(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Ticker)
	assert.False(t, snap.CapturedAt.IsZero())
	assert.Equal(t, 191.45, snap.Get("currentPrice"))
}

func TestFetchOneInsufficientData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"shortName":"X"}}],"error":null}}`))
	})

	_, err := client.FetchOne(t.Context(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrFetchInsufficientData)
}

func TestFetchOneBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchOne(t.Context(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrFetchBadStatus)
}

func TestFetchOneEmptyTicker(t *testing.T) {
	client := New(fetch.Egress{})

	_, err := client.FetchOne(t.Context(), "")
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)
}

func TestFetchManyCombinedRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, bulkQuotePath, r.URL.Path)
		assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))
		_, _ = w.Write([]byte(`{
		  "quoteResponse": {
		    "result": [{
		      "symbol": "AAPL",
		      "regularMarketPrice": 191.45, "marketCap": 2995000000000,
		      "regularMarketPreviousClose": 189.84, "regularMarketOpen": 190.9,
		      "regularMarketDayLow": 189.1, "regularMarketDayHigh": 192.0,
		      "regularMarketVolume": 51000000, "trailingPE": 29.5,
		      "bid": 191.4, "ask": 191.5
		    }],
		    "error": null
		  }
		}`))
	})

	snaps, err := client.FetchMany(t.Context(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "AAPL", snaps[0].Ticker)
}

func TestFetchManyEmptyBatch(t *testing.T) {
	client := New(fetch.Egress{})

	_, err := client.FetchMany(t.Context(), nil)
	assert.ErrorIs(t, err, exception.ErrFetchEmptyBatch)
}

func TestFetchManyTransportFailure(t *testing.T) {
	client := New(fetch.Egress{})
	client.baseURL = "http://127.0.0.1:1"

	_, err := client.FetchMany(t.Context(), []string{"AAPL"})
	assert.Error(t, err)
}
