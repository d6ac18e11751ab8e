package yahoo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSummary = `{
  "quoteSummary": {
    "result": [
      {
        "assetProfile": {
          "sector": "Technology",
          "industry": "Consumer Electronics",
          "country": "United States",
          "website": "https://www.apple.com",
          "companyOfficers": [{"name": "ignored"}]
        },
        "summaryDetail": {
          "previousClose": {"raw": 189.84, "fmt": "189.84"},
          "open": {"raw": 190.9, "fmt": "190.90"},
          "marketCap": {"raw": 2994000000000, "fmt": "2.99T"},
          "dividendYield": {"raw": 0.0055, "fmt": "0.55%"},
          "emptyValue": {}
        },
        "financialData": {
          "currentPrice": {"raw": 191.45, "fmt": "191.45"}
        },
        "price": {
          "shortName": "Apple Inc.",
          "currency": "USD",
          "exchange": "NMS",
          "quoteType": "EQUITY",
          "marketCap": {"raw": 2995000000000, "fmt": "3.00T"},
          "regularMarketTime": 1716580800
        }
      }
    ],
    "error": null
  }
}`

func TestDecodeQuoteSummary(t *testing.T) {
	info, err := decodeQuoteSummary([]byte(sampleSummary))
	require.NoError(t, err)

	assert.Equal(t, "Technology", info["sector"])
	assert.Equal(t, "Apple Inc.", info["shortName"])
	assert.Equal(t, 191.45, info["currentPrice"])
	assert.Equal(t, 0.0055, info["dividendYield"])

	// price is merged after summaryDetail, so its marketCap wins
	assert.Equal(t, 2995000000000.0, info["marketCap"])

	// nested structures and empty value objects are dropped
	assert.NotContains(t, info, "companyOfficers")
	assert.NotContains(t, info, "emptyValue")
}

func TestDecodeQuoteSummaryProviderError(t *testing.T) {
	body := `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: NOPE"}}}`

	_, err := decodeQuoteSummary([]byte(body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestDecodeQuoteSummaryEmptyResult(t *testing.T) {
	_, err := decodeQuoteSummary([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
	assert.Error(t, err)
}

func TestDecodeQuoteSummaryMalformed(t *testing.T) {
	_, err := decodeQuoteSummary([]byte(`{"quoteSummary":`))
	assert.Error(t, err)
}

func TestDecodeBulkQuote(t *testing.T) {
	body := `{
	  "quoteResponse": {
	    "result": [
	      {"symbol": "AAPL", "regularMarketPrice": 191.45, "marketCap": 2995000000000},
	      {"symbol": "MSFT", "regularMarketPrice": {"raw": 425.3, "fmt": "425.30"}}
	    ],
	    "error": null
	  }
	}`

	quotes, err := decodeBulkQuote([]byte(body))
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "AAPL", quotes[0]["symbol"])
	assert.Equal(t, 191.45, quotes[0]["regularMarketPrice"])
	assert.Equal(t, 425.3, quotes[1]["regularMarketPrice"])
}
