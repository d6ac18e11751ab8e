package model

import "time"

// MaxDecimal is the largest magnitude the decimal(10,2) metric columns can
// hold. Values beyond it are nulled during normalization instead of failing
// the whole record.
const MaxDecimal = 99999999.99

// Snapshot is one time-stamped capture of a ticker's metrics. Every metric
// column is nullable; a null means the provider had no usable value at
// capture time.
type Snapshot struct {
	ID         uint      `gorm:"primarykey"`
	Ticker     string    `gorm:"size:10;not null;index"`
	CapturedAt time.Time `gorm:"not null;index"`

	// Company profile
	CompanyName     *string
	LongName        *string
	ShortName       *string
	Sector          *string `gorm:"index"`
	Industry        *string
	Website         *string
	BusinessSummary *string
	Country         *string
	Currency        *string
	Exchange        *string
	QuoteType       *string

	// Shares
	MarketCap             *int64 `gorm:"index"`
	EnterpriseValue       *int64
	FloatShares           *int64
	SharesOutstanding     *int64
	SharesShort           *int64
	SharesShortPrevMonth  *int64
	SharesShortPriorMonth *int64

	// Prices
	CurrentPrice         *float64 `gorm:"type:decimal(10,2)"`
	PreviousClose        *float64 `gorm:"type:decimal(10,2)"`
	Open                 *float64 `gorm:"type:decimal(10,2)"`
	DayLow               *float64 `gorm:"type:decimal(10,2)"`
	DayHigh              *float64 `gorm:"type:decimal(10,2)"`
	FiftyTwoWeekLow      *float64 `gorm:"type:decimal(10,2)"`
	FiftyTwoWeekHigh     *float64 `gorm:"type:decimal(10,2)"`
	FiftyDayAverage      *float64 `gorm:"type:decimal(10,2)"`
	TwoHundredDayAverage *float64 `gorm:"type:decimal(10,2)"`

	// Volume and book
	Volume              *int64
	AverageVolume       *int64
	AverageVolume10Days *int64   `gorm:"column:average_volume_10days"`
	Bid                 *float64 `gorm:"type:decimal(10,2)"`
	Ask                 *float64 `gorm:"type:decimal(10,2)"`
	BidSize             *int32
	AskSize             *int32

	// Valuation ratios
	TrailingPE                   *float64 `gorm:"type:decimal(10,2)"`
	ForwardPE                    *float64 `gorm:"type:decimal(10,2)"`
	PegRatio                     *float64 `gorm:"type:decimal(10,2)"`
	PriceToBook                  *float64 `gorm:"type:decimal(10,2)"`
	PriceToSalesTrailing12Months *float64 `gorm:"column:price_to_sales_trailing_12_months;type:decimal(10,2)"`
	DebtToEquity                 *float64 `gorm:"type:decimal(10,2)"`
	ReturnOnEquity               *float64 `gorm:"type:decimal(10,2)"`
	ReturnOnAssets               *float64 `gorm:"type:decimal(10,2)"`

	// Earnings and dividends
	TrailingEps              *float64 `gorm:"type:decimal(10,2)"`
	ForwardEps               *float64 `gorm:"type:decimal(10,2)"`
	DividendYield            *float64 `gorm:"type:decimal(10,2)"`
	DividendRate             *float64 `gorm:"type:decimal(10,2)"`
	PayoutRatio              *float64 `gorm:"type:decimal(10,2)"`
	FiveYearAvgDividendYield *float64 `gorm:"type:decimal(10,2)"`

	// Growth and margins
	RevenueGrowth    *float64 `gorm:"type:decimal(10,2)"`
	EarningsGrowth   *float64 `gorm:"type:decimal(10,2)"`
	ProfitMargins    *float64 `gorm:"type:decimal(10,2)"`
	OperatingMargins *float64 `gorm:"type:decimal(10,2)"`
	EbitdaMargins    *float64 `gorm:"type:decimal(10,2)"`

	// Risk and analyst targets
	Beta              *float64 `gorm:"type:decimal(10,2)"`
	BookValue         *float64 `gorm:"type:decimal(10,2)"`
	ShortRatio        *float64 `gorm:"type:decimal(10,2)"`
	PriceTargetLow    *float64 `gorm:"type:decimal(10,2)"`
	PriceTargetMean   *float64 `gorm:"type:decimal(10,2)"`
	PriceTargetHigh   *float64 `gorm:"type:decimal(10,2)"`
	PriceTargetMedian *float64 `gorm:"type:decimal(10,2)"`

	// Regular market session
	RegularMarketTime          *int64
	RegularMarketOpen          *float64 `gorm:"type:decimal(10,2)"`
	RegularMarketClose         *float64 `gorm:"type:decimal(10,2)"`
	RegularMarketPreviousClose *float64 `gorm:"type:decimal(10,2)"`

	// Short interest
	SharesShortRatio           *float64   `gorm:"type:decimal(10,2)"`
	SharesShortRatioPrevMonth  *float64   `gorm:"type:decimal(10,2)"`
	SharesShortRatioPriorMonth *float64   `gorm:"type:decimal(10,2)"`
	SharesShortRatioDate       *time.Time `gorm:"type:date"`

	CreatedAt time.Time
}

func (Snapshot) TableName() string {
	return "snapshots"
}
