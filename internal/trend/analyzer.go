package trend

import (
	"context"
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// minBars is the number of daily bars needed to compute MA20.
const minBars = 20

// Analyzer computes moving-average posture, bias and a 0-100 signal score
// from a daily series. It implements contracts.TrendAnalyzer.
type Analyzer struct {
	logger *logger.Logger
}

// NewAnalyzer creates a new trend analyzer.
func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{
		logger: log.WithField("module", "trend"),
	}
}

// Analyze computes the trend result for one stock. Bars must be in
// chronological order.
func (a *Analyzer) Analyze(ctx context.Context, bars []contracts.DailyBar, code string) (contracts.TrendResult, error) {
	if err := ctx.Err(); err != nil {
		return contracts.TrendResult{}, err
	}
	if len(bars) < minBars {
		return contracts.TrendResult{}, fmt.Errorf("need at least %d bars, got %d", minBars, len(bars))
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	price := closes[len(closes)-1]
	ma5 := last(talib.Sma(closes, 5))
	ma10 := last(talib.Sma(closes, 10))
	ma20 := last(talib.Sma(closes, 20))

	bias := 0.0
	if ma5 != 0 {
		bias = (price - ma5) / ma5 * 100
	}

	status := classifyStatus(price, ma5, ma10, ma20)
	score, reasons, risks := a.scoreSignals(closes, volumes, price, ma5, ma10, ma20, bias, status)

	result := contracts.TrendResult{
		CurrentPrice:  price,
		MA5:           ma5,
		MA10:          ma10,
		MA20:          ma20,
		BiasMA5:       bias,
		Status:        status,
		SignalScore:   score,
		SignalReasons: reasons,
		RiskFactors:   risks,
	}

	a.logger.WithFields(map[string]interface{}{
		"code":   code,
		"status": status,
		"score":  score,
		"bias":   bias,
	}).Debug("Trend analysis completed")

	return result, nil
}

// classifyStatus derives the trend status from the MA alignment.
func classifyStatus(price, ma5, ma10, ma20 float64) contracts.TrendStatus {
	switch {
	case price > ma5 && ma5 > ma10 && ma10 > ma20:
		return contracts.TrendStrongBull
	case ma5 > ma10 && ma10 > ma20:
		return contracts.TrendBull
	case ma5 < ma10 && ma10 < ma20:
		return contracts.TrendBear
	default:
		return contracts.TrendSideways
	}
}

// scoreSignals computes the 0-100 signal score together with the
// human-readable reasons and risk factors backing it.
func (a *Analyzer) scoreSignals(
	closes, volumes []float64,
	price, ma5, ma10, ma20, bias float64,
	status contracts.TrendStatus,
) (int, []string, []string) {
	score := 50
	var reasons []string
	var risks []string

	switch status {
	case contracts.TrendStrongBull:
		score += 30
		reasons = append(reasons, "Price holds above a full bullish MA5>MA10>MA20 alignment")
	case contracts.TrendBull:
		score += 20
		reasons = append(reasons, "Moving averages form a bullish MA5>MA10>MA20 alignment")
	case contracts.TrendBear:
		score -= 30
		risks = append(risks, "Moving averages form a bearish alignment")
	default:
		score -= 5
	}

	// Recent momentum over the last five sessions.
	if ret5 := trailingReturn(closes, 5); ret5 > 0 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("Positive 5-day momentum (%+.2f%%)", ret5*100))
	} else if ret5 < -0.05 {
		score -= 10
		risks = append(risks, fmt.Sprintf("Price dropped %.2f%% over the last 5 sessions", -ret5*100))
	}

	// Volume expansion against the 20-day baseline.
	if ratio := volumeRatio(volumes); ratio >= 1.5 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("Volume running %.1fx above the 20-day average", ratio))
	}

	// Stretched price invites mean reversion.
	if bias > 5 {
		score -= 10
		risks = append(risks, fmt.Sprintf("Price stretched %.2f%% above MA5", bias))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, reasons, risks
}

// trailingReturn computes the fractional return over the last n sessions.
func trailingReturn(closes []float64, n int) float64 {
	if len(closes) <= n {
		return 0
	}
	base := closes[len(closes)-1-n]
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1] - base) / base
}

// volumeRatio compares the 5-day average volume against the 20-day one.
func volumeRatio(volumes []float64) float64 {
	if len(volumes) < 20 {
		return 1
	}
	avg5 := mean(volumes[len(volumes)-5:])
	avg20 := mean(volumes[len(volumes)-20:])
	if avg20 == 0 {
		return 1
	}
	return avg5 / avg20
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
