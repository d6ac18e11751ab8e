package yahoo

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/yanun0323/errors"

	"marketsnap/pkg/exception"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Modules are merged in this order so later modules win duplicate keys,
// matching how the summary endpoint layers price over profile data.
var moduleOrder = []string{
	"assetProfile",
	"defaultKeyStatistics",
	"summaryDetail",
	"financialData",
	"price",
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type summaryEnvelope struct {
	QuoteSummary struct {
		Result []map[string]map[string]any `json:"result"`
		Error  *apiError                   `json:"error"`
	} `json:"quoteSummary"`
}

type quoteEnvelope struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
		Error  *apiError        `json:"error"`
	} `json:"quoteResponse"`
}

// decodeQuoteSummary flattens the module-structured summary payload into a
// single field map keyed by the provider's native field names.
func decodeQuoteSummary(body []byte) (map[string]any, error) {
	var envelope summaryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "unmarshal summary envelope")
	}
	if e := envelope.QuoteSummary.Error; e != nil {
		return nil, errors.Errorf("provider error, code: %s, description: %s", e.Code, e.Description)
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, exception.ErrFetchMissingQuote
	}

	modules := envelope.QuoteSummary.Result[0]
	info := make(map[string]any, 64)
	for _, name := range moduleOrder {
		for key, value := range modules[name] {
			if v, ok := scalar(value); ok {
				info[key] = v
			}
		}
	}
	return info, nil
}

// decodeBulkQuote returns one flat field map per quote in the combined
// response.
func decodeBulkQuote(body []byte) ([]map[string]any, error) {
	var envelope quoteEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "unmarshal quote envelope")
	}
	if e := envelope.QuoteResponse.Error; e != nil {
		return nil, errors.Errorf("provider error, code: %s, description: %s", e.Code, e.Description)
	}
	if len(envelope.QuoteResponse.Result) == 0 {
		return nil, exception.ErrFetchMissingQuote
	}

	quotes := make([]map[string]any, 0, len(envelope.QuoteResponse.Result))
	for _, raw := range envelope.QuoteResponse.Result {
		info := make(map[string]any, len(raw))
		for key, value := range raw {
			if v, ok := scalar(value); ok {
				info[key] = v
			}
		}
		quotes = append(quotes, info)
	}
	return quotes, nil
}

// scalar unwraps the provider's {"raw": x, "fmt": "..."} value objects and
// drops nested structures, keeping only usable leaf values.
func scalar(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		raw, ok := v["raw"]
		if !ok {
			return nil, false
		}
		return scalar(raw)
	case []any:
		return nil, false
	default:
		return v, true
	}
}
