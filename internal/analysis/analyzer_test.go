package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

type fakeHistory struct {
	bars []contracts.DailyBar
	err  error
}

func (h *fakeHistory) FetchDaily(ctx context.Context, code string, days int) ([]contracts.DailyBar, string, error) {
	if h.err != nil {
		return nil, "", h.err
	}
	return h.bars, "fake", nil
}

type fakeTrend struct {
	result contracts.TrendResult
	err    error
}

func (t *fakeTrend) Analyze(ctx context.Context, bars []contracts.DailyBar, code string) (contracts.TrendResult, error) {
	if t.err != nil {
		return contracts.TrendResult{}, t.err
	}
	return t.result, nil
}

func flatBars(n int, close float64) []contracts.DailyBar {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.DailyBar, n)
	for i := range bars {
		bars[i] = contracts.DailyBar{
			Date:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1e6,
		}
	}
	return bars
}

func bullTrend(price, ma5, ma10, ma20 float64, score int) contracts.TrendResult {
	return contracts.TrendResult{
		CurrentPrice: price,
		MA5:          ma5,
		MA10:         ma10,
		MA20:         ma20,
		Status:       contracts.TrendBull,
		SignalScore:  score,
	}
}

func testStock() contracts.StockSnapshot {
	return contracts.StockSnapshot{
		Code:         "600519",
		Name:         "Moutai",
		Price:        10,
		ChangePct:    5,
		Volume:       1e6,
		Amount:       60e8,
		TurnoverRate: 10,
		MarketCap:    1e11,
		ListDays:     4000,
	}
}

func newTestAnalyzer(history contracts.HistoryProvider, trend contracts.TrendAnalyzer) *Analyzer {
	return NewAnalyzer(history, trend, DefaultConfig(), logger.NewNop())
}

func TestAnalyzer_AnalyzeSuccess(t *testing.T) {
	history := &fakeHistory{bars: flatBars(40, 10)}
	trend := &fakeTrend{result: bullTrend(10, 11, 9, 8, 80)}

	rec := newTestAnalyzer(history, trend).Analyze(context.Background(), testStock())
	require.NotNil(t, rec)

	// Heat: change 5 -> 50, turnover 10 -> 25, amount 60e8 -> 25.
	// Composite: 0.6*80 + 0.4*100 = 88.
	assert.Equal(t, 88, rec.Score)
	assert.Equal(t, contracts.CategoryPullback, rec.Category)
	assert.Equal(t, contracts.RiskMedium, rec.Risk)
	assert.Equal(t, "600519", rec.Stock.Code)
	assert.NotEmpty(t, rec.Reasons)
	assert.NotEmpty(t, rec.RiskWarnings)
}

func TestAnalyzer_AnalyzeFailures(t *testing.T) {
	tests := []struct {
		name    string
		history *fakeHistory
		trend   *fakeTrend
	}{
		{
			name:    "history fetch fails",
			history: &fakeHistory{err: errors.New("timeout")},
			trend:   &fakeTrend{result: bullTrend(10, 11, 9, 8, 80)},
		},
		{
			name:    "history empty",
			history: &fakeHistory{bars: nil},
			trend:   &fakeTrend{result: bullTrend(10, 11, 9, 8, 80)},
		},
		{
			name:    "history too short",
			history: &fakeHistory{bars: flatBars(25, 10)},
			trend:   &fakeTrend{result: bullTrend(10, 11, 9, 8, 80)},
		},
		{
			name: "invalid bar in series",
			history: &fakeHistory{bars: append(flatBars(39, 10), contracts.DailyBar{
				Date: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			})},
			trend: &fakeTrend{result: bullTrend(10, 11, 9, 8, 80)},
		},
		{
			name:    "trend analysis fails",
			history: &fakeHistory{bars: flatBars(40, 10)},
			trend:   &fakeTrend{err: errors.New("series too short")},
		},
		{
			name:    "score below cutoff",
			history: &fakeHistory{bars: flatBars(40, 10)},
			trend:   &fakeTrend{result: bullTrend(10, 11, 9, 8, 10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestAnalyzer(tt.history, tt.trend).Analyze(context.Background(), testStock())
			assert.Nil(t, rec)
		})
	}
}

func TestMarketHeatScore(t *testing.T) {
	tests := []struct {
		name                     string
		change, turnover, amount float64
		want                     int
	}{
		{"ideal band everywhere", 5, 10, 60e8, 100},
		{"change lower bound", 3, 10, 60e8, 100},
		{"change upper bound", 8, 10, 60e8, 100},
		{"moderate change", 1, 10, 60e8, 90},
		{"change just below ideal", 2.99, 10, 60e8, 90},
		{"hot change", 8.01, 10, 60e8, 85},
		{"hot change upper bound", 10, 10, 60e8, 85},
		{"flat day", 0, 10, 60e8, 75},
		{"overheated change", 10.01, 10, 60e8, 65},
		{"down day", -2, 10, 60e8, 50},
		{"turnover lower bound", 5, 5, 60e8, 100},
		{"turnover upper bound", 5, 15, 60e8, 100},
		{"warm turnover", 5, 3, 60e8, 95},
		{"hot turnover", 5, 16, 60e8, 93},
		{"hot turnover upper bound", 5, 20, 60e8, 93},
		{"light turnover", 5, 1, 60e8, 87},
		{"churning turnover", 5, 25, 60e8, 83},
		{"sleepy turnover", 5, 0.5, 60e8, 80},
		{"large amount", 5, 10, 50e8, 100},
		{"good amount", 5, 10, 20e8, 95},
		{"fair amount", 5, 10, 10e8, 90},
		{"small amount", 5, 10, 5e8, 85},
		{"tiny amount", 5, 10, 1e8, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := contracts.StockSnapshot{
				ChangePct:    tt.change,
				TurnoverRate: tt.turnover,
				Amount:       tt.amount,
			}
			assert.Equal(t, tt.want, marketHeatScore(stock))
		})
	}
}

func TestClassify(t *testing.T) {
	pe := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		trend contracts.TrendResult
		stock contracts.StockSnapshot
		want  contracts.Category
	}{
		{
			name:  "strong momentum beats pullback",
			trend: bullTrend(10, 11, 9, 8, 80),
			stock: contracts.StockSnapshot{ChangePct: 6},
			want:  contracts.CategoryStrongMomentum,
		},
		{
			name:  "pullback inside the band",
			trend: bullTrend(10, 11, 9, 8, 80),
			stock: contracts.StockSnapshot{ChangePct: 2},
			want:  contracts.CategoryPullback,
		},
		{
			name: "breakout with small bias",
			trend: contracts.TrendResult{
				CurrentPrice: 11.2, MA5: 11, MA10: 10, MA20: 9,
				BiasMA5: 1.8, Status: contracts.TrendStrongBull,
			},
			stock: contracts.StockSnapshot{ChangePct: 2},
			want:  contracts.CategoryBreakout,
		},
		{
			name: "value with reasonable PE",
			trend: contracts.TrendResult{
				CurrentPrice: 11.5, MA5: 11, MA10: 10, MA20: 9,
				BiasMA5: 4.5, Status: contracts.TrendStrongBull,
			},
			stock: contracts.StockSnapshot{ChangePct: 2, PERatio: pe(15)},
			want:  contracts.CategoryValue,
		},
		{
			name: "negative PE falls through to potential",
			trend: contracts.TrendResult{
				CurrentPrice: 11.5, MA5: 11, MA10: 10, MA20: 9,
				BiasMA5: 4.5, Status: contracts.TrendStrongBull,
			},
			stock: contracts.StockSnapshot{ChangePct: 2, PERatio: pe(-10)},
			want:  contracts.CategoryPotential,
		},
		{
			name: "non-bullish defaults to potential",
			trend: contracts.TrendResult{
				CurrentPrice: 10, MA5: 10, MA10: 10, MA20: 10,
				Status: contracts.TrendSideways,
			},
			stock: contracts.StockSnapshot{ChangePct: 6, PERatio: pe(15)},
			want:  contracts.CategoryPotential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.trend, tt.stock))
		})
	}
}

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name             string
		turnover, change float64
		want             contracts.RiskLevel
	}{
		{"overheated both", 16, 9, contracts.RiskHigh},
		{"healthy band", 10, 5, contracts.RiskMedium},
		{"quiet stock", 2, 1, contracts.RiskLow},
		{"extreme turnover only", 16, 1, contracts.RiskHigh},
		{"extreme change only", 2, 9, contracts.RiskHigh},
		{"elevated turnover", 12, 1, contracts.RiskMedium},
		{"elevated change", 2, 6, contracts.RiskMedium},
		{"mild residual", 4, 4, contracts.RiskLow},
	}

	calm := flatBars(40, 10)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := contracts.StockSnapshot{TurnoverRate: tt.turnover, ChangePct: tt.change}
			assert.Equal(t, tt.want, assessRisk(stock, calm))
		})
	}
}

func TestAssessRisk_VolatilityEscalation(t *testing.T) {
	// Alternate the last ten closes hard enough to push stddev/mean
	// past the escalation threshold.
	bars := flatBars(40, 10)
	for i := len(bars) - 10; i < len(bars); i++ {
		if i%2 == 0 {
			bars[i].Close = 12
		} else {
			bars[i].Close = 8
		}
	}

	quiet := contracts.StockSnapshot{TurnoverRate: 2, ChangePct: 1}
	assert.Equal(t, contracts.RiskMedium, assessRisk(quiet, bars))

	hot := contracts.StockSnapshot{TurnoverRate: 16, ChangePct: 9}
	assert.Equal(t, contracts.RiskHigh, assessRisk(hot, bars), "high stays high")
}

func TestClosingVolatility(t *testing.T) {
	flat := flatBars(15, 10)
	vol, ok := closingVolatility(flat, 10)
	require.True(t, ok)
	assert.InDelta(t, 0, vol, 1e-9)

	_, ok = closingVolatility(flatBars(5, 10), 10)
	assert.False(t, ok)
}
