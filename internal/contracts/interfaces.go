package contracts

import "context"

// QuoteRow is one raw row of the full current-quote table as returned by
// the market ranking source. Optional columns stay raw so the finder can
// degrade them field by field.
type QuoteRow struct {
	Code         string
	Name         string
	Price        float64
	ChangePct    float64
	Volume       float64
	Amount       float64
	TurnoverRate float64
	MarketCap    float64
	ListDate     string   // "YYYYMMDD" or "YYYY-MM-DD", empty when unknown
	PERatio      *float64 // nil when unavailable
}

// QuoteSource provides the full current-quote table of the market.
// May fail or return an empty table; callers tolerate both.
type QuoteSource interface {
	FetchAllQuotes(ctx context.Context) ([]QuoteRow, error)
}

// HistoryProvider provides historical daily series. Returns the bars in
// chronological order together with a source label.
type HistoryProvider interface {
	FetchDaily(ctx context.Context, code string, days int) ([]DailyBar, string, error)
}

// TrendAnalyzer computes a trend result from a daily series.
type TrendAnalyzer interface {
	Analyze(ctx context.Context, bars []DailyBar, code string) (TrendResult, error)
}
