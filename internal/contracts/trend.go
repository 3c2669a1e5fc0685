package contracts

import "time"

// DailyBar is a single daily OHLCV row of a historical price series.
type DailyBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether the bar carries all required fields.
func (b DailyBar) Valid() bool {
	return !b.Date.IsZero() && b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0 && b.Volume >= 0
}

// TrendStatus classifies the moving-average posture of a stock.
type TrendStatus string

const (
	TrendStrongBull TrendStatus = "strong_bull" // price above MA5 > MA10 > MA20
	TrendBull       TrendStatus = "bull"        // MA5 > MA10 > MA20
	TrendSideways   TrendStatus = "sideways"
	TrendBear       TrendStatus = "bear" // MA5 < MA10 < MA20
)

// Bullish reports whether the status counts as a bullish alignment.
func (t TrendStatus) Bullish() bool {
	return t == TrendStrongBull || t == TrendBull
}

// TrendResult is the output of the trend analyzer for one stock.
type TrendResult struct {
	CurrentPrice  float64
	MA5           float64
	MA10          float64
	MA20          float64
	BiasMA5       float64 // percentage deviation of price from MA5
	Status        TrendStatus
	SignalScore   int // 0-100
	SignalReasons []string
	RiskFactors   []string
}
