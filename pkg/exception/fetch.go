package exception

import "github.com/yanun0323/errors"

var (
	ErrFetchInsufficientData = errors.New("fetch: insufficient data in payload")
	ErrFetchEmptyPayload     = errors.New("fetch: empty payload")
	ErrFetchEmptyBatch       = errors.New("fetch: empty batch")
	ErrFetchBadStatus        = errors.New("fetch: unexpected response status")
	ErrFetchMissingQuote     = errors.New("fetch: quote missing from response")
)
