// Package normalize converts raw provider payload values into the typed,
// bounded, nullable metric values the store accepts. Cleaning is total: bad
// input becomes null, never an error.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"marketsnap/internal/fetch"
	"marketsnap/internal/model"
)

// _sentinels are provider tokens that mean "no value" for numeric fields.
var _sentinels = map[string]struct{}{
	"N/A":  {},
	"n/a":  {},
	"NA":   {},
	"na":   {},
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"null": {},
}

// _decorations strips currency symbols and grouping separators before parsing.
var _decorations = strings.NewReplacer("$", "", ",", "")

// Normalizer maps raw snapshots to model.Snapshot records.
type Normalizer struct {
	bound float64
}

// NewNormalizer creates a normalizer. bound caps the magnitude of decimal
// metric values; zero or negative selects model.MaxDecimal.
func NewNormalizer(bound float64) *Normalizer {
	if bound <= 0 {
		bound = model.MaxDecimal
	}
	return &Normalizer{bound: bound}
}

// Value cleans a single metric value. It returns nil for unusable input, an
// int64 when the cleaned number has no fractional part and a float64
// otherwise. Feeding the result back in returns it unchanged.
func (n *Normalizer) Value(v any) any {
	f, ok := n.number(v)
	if !ok || math.Abs(f) > n.bound {
		return nil
	}
	if f == math.Trunc(f) {
		return int64(f)
	}
	return f
}

// Float cleans a value destined for a decimal column.
func (n *Normalizer) Float(v any) *float64 {
	f, ok := n.number(v)
	if !ok || math.Abs(f) > n.bound {
		return nil
	}
	return &f
}

// Int64 cleans a value destined for a bigint column. Fractional values round
// half away from zero. The magnitude guard here is the column's own range,
// not the decimal bound; share counts and market caps routinely exceed it.
func (n *Normalizer) Int64(v any) *int64 {
	f, ok := n.number(v)
	if !ok {
		return nil
	}
	r := math.Round(f)
	if r < -(1 << 63) || r >= 1<<63 {
		return nil
	}
	i := int64(r)
	return &i
}

// Int32 cleans a value destined for an integer column.
func (n *Normalizer) Int32(v any) *int32 {
	f, ok := n.number(v)
	if !ok {
		return nil
	}
	r := math.Round(f)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return nil
	}
	i := int32(r)
	return &i
}

// Text passes a string value through, mapping the provider's textual "no
// value" tokens to nil. Non-string input is dropped.
func (n *Normalizer) Text(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch s {
	case "N/A", "n/a", "NA", "na", "":
		return nil
	}
	return &s
}

// Date cleans a value destined for a date column. The provider sends dates
// as epoch seconds; plain "2006-01-02" strings are accepted too.
func (n *Normalizer) Date(v any) *time.Time {
	var sec int64
	switch x := v.(type) {
	case string:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		return &t
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		sec = int64(x)
	case int:
		sec = int64(x)
	case int64:
		sec = x
	default:
		return nil
	}
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func (n *Normalizer) number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		var ok bool
		f, ok = n.fromString(x)
		if !ok {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (n *Normalizer) fromString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if _, bad := _sentinels[s]; bad {
		return 0, false
	}
	s = _decorations.Replace(s)
	pct := strings.HasSuffix(s, "%")
	if pct {
		s = strings.TrimSuffix(s, "%")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return f, true
}

// Clean converts a raw snapshot into a typed record. Every metric field is
// cleaned independently; a field the provider omitted or garbled stays null.
func (n *Normalizer) Clean(raw fetch.RawSnapshot) model.Snapshot {
	s := model.Snapshot{
		Ticker:     raw.Ticker,
		CapturedAt: raw.CapturedAt,
	}
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now().UTC()
	}

	s.CompanyName = n.Text(raw.Get("displayName"))
	s.LongName = n.Text(raw.Get("longName"))
	s.ShortName = n.Text(raw.Get("shortName"))
	s.Sector = n.Text(raw.Get("sector"))
	s.Industry = n.Text(raw.Get("industry"))
	s.Website = n.Text(raw.Get("website"))
	s.BusinessSummary = n.Text(raw.Get("longBusinessSummary"))
	s.Country = n.Text(raw.Get("country"))
	s.Currency = n.Text(raw.Get("currency"))
	s.Exchange = n.Text(raw.Get("exchange"))
	s.QuoteType = n.Text(raw.Get("quoteType"))

	s.MarketCap = n.Int64(raw.Get("marketCap"))
	s.EnterpriseValue = n.Int64(raw.Get("enterpriseValue"))
	s.FloatShares = n.Int64(raw.Get("floatShares"))
	s.SharesOutstanding = n.Int64(raw.Get("sharesOutstanding"))
	s.SharesShort = n.Int64(raw.Get("sharesShort"))
	s.SharesShortPrevMonth = n.Int64(raw.Get("sharesShortPreviousMonth"))
	s.SharesShortPriorMonth = n.Int64(raw.Get("sharesShortPriorMonth"))

	s.CurrentPrice = n.Float(raw.Get("currentPrice"))
	s.PreviousClose = n.Float(raw.Get("previousClose"))
	s.Open = n.Float(raw.Get("open"))
	s.DayLow = n.Float(raw.Get("dayLow"))
	s.DayHigh = n.Float(raw.Get("dayHigh"))
	s.FiftyTwoWeekLow = n.Float(raw.Get("fiftyTwoWeekLow"))
	s.FiftyTwoWeekHigh = n.Float(raw.Get("fiftyTwoWeekHigh"))
	s.FiftyDayAverage = n.Float(raw.Get("fiftyDayAverage"))
	s.TwoHundredDayAverage = n.Float(raw.Get("twoHundredDayAverage"))

	s.Volume = n.Int64(raw.Get("volume"))
	s.AverageVolume = n.Int64(raw.Get("averageVolume"))
	s.AverageVolume10Days = n.Int64(raw.Get("averageVolume10days"))
	s.Bid = n.Float(raw.Get("bid"))
	s.Ask = n.Float(raw.Get("ask"))
	s.BidSize = n.Int32(raw.Get("bidSize"))
	s.AskSize = n.Int32(raw.Get("askSize"))

	s.TrailingPE = n.Float(raw.Get("trailingPE"))
	s.ForwardPE = n.Float(raw.Get("forwardPE"))
	s.PegRatio = n.Float(raw.Get("pegRatio"))
	s.PriceToBook = n.Float(raw.Get("priceToBook"))
	s.PriceToSalesTrailing12Months = n.Float(raw.Get("priceToSalesTrailing12Months"))
	s.DebtToEquity = n.Float(raw.Get("debtToEquity"))
	s.ReturnOnEquity = n.Float(raw.Get("returnOnEquity"))
	s.ReturnOnAssets = n.Float(raw.Get("returnOnAssets"))

	s.TrailingEps = n.Float(raw.Get("trailingEps"))
	s.ForwardEps = n.Float(raw.Get("forwardEps"))
	s.DividendYield = n.Float(raw.Get("dividendYield"))
	s.DividendRate = n.Float(raw.Get("dividendRate"))
	s.PayoutRatio = n.Float(raw.Get("payoutRatio"))
	s.FiveYearAvgDividendYield = n.Float(raw.Get("fiveYearAvgDividendYield"))

	s.RevenueGrowth = n.Float(raw.Get("revenueGrowth"))
	s.EarningsGrowth = n.Float(raw.Get("earningsGrowth"))
	s.ProfitMargins = n.Float(raw.Get("profitMargins"))
	s.OperatingMargins = n.Float(raw.Get("operatingMargins"))
	s.EbitdaMargins = n.Float(raw.Get("ebitdaMargins"))

	s.Beta = n.Float(raw.Get("beta"))
	s.BookValue = n.Float(raw.Get("bookValue"))
	s.ShortRatio = n.Float(raw.Get("shortRatio"))
	s.PriceTargetLow = n.Float(raw.Get("targetLowPrice"))
	s.PriceTargetMean = n.Float(raw.Get("targetMeanPrice"))
	s.PriceTargetHigh = n.Float(raw.Get("targetHighPrice"))
	s.PriceTargetMedian = n.Float(raw.Get("targetMedianPrice"))

	s.RegularMarketTime = n.Int64(raw.Get("regularMarketTime"))
	s.RegularMarketOpen = n.Float(raw.Get("regularMarketOpen"))
	s.RegularMarketClose = n.Float(raw.Get("regularMarketPrice"))
	s.RegularMarketPreviousClose = n.Float(raw.Get("regularMarketPreviousClose"))

	// The provider carries no prev/prior month short ratio fields.
	// SharesShortRatioPrevMonth and SharesShortRatioPriorMonth stay null.
	s.SharesShortRatio = n.Float(raw.Get("shortPercentOfFloat"))
	s.SharesShortRatioDate = n.Date(raw.Get("dateShortInterest"))

	return s
}
