package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// Config defines per-stock analysis parameters.
type Config struct {
	HistoryDays    int // daily bars requested per stock
	MinHistoryDays int // minimum bars required to proceed
	MinScore       int // composite score cutoff
	TrendWeight    float64
	HeatWeight     float64
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		HistoryDays:    60,
		MinHistoryDays: 30,
		MinScore:       60,
		TrendWeight:    0.6,
		HeatWeight:     0.4,
	}
}

// volatilityWindow is the closing-price window used for risk escalation.
const volatilityWindow = 10

// volatilityThreshold escalates the risk tier when exceeded.
const volatilityThreshold = 0.05

// Analyzer scores, classifies and risk-assesses a single candidate.
// Analysis failures never propagate: a candidate that cannot be analyzed
// is simply absent from the results.
type Analyzer struct {
	history contracts.HistoryProvider
	trend   contracts.TrendAnalyzer
	config  Config
	logger  *logger.Logger
}

// NewAnalyzer creates a new per-stock analyzer.
func NewAnalyzer(history contracts.HistoryProvider, trend contracts.TrendAnalyzer, config Config, log *logger.Logger) *Analyzer {
	return &Analyzer{
		history: history,
		trend:   trend,
		config:  config,
		logger:  log.WithField("module", "analysis"),
	}
}

// Analyze runs the full scoring pipeline for one candidate. It returns
// nil when the candidate cannot be analyzed or does not reach the minimum
// composite score.
func (a *Analyzer) Analyze(ctx context.Context, stock contracts.StockSnapshot) (rec *contracts.Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithFields(map[string]interface{}{
				"code":  stock.Code,
				"panic": r,
			}).Error("Analysis failed")
			rec = nil
		}
	}()

	rec, err := a.analyze(ctx, stock)
	if err != nil {
		a.logger.WithError(err).WithFields(map[string]interface{}{
			"code": stock.Code,
			"name": stock.Name,
		}).Warn("Candidate dropped")
		return nil
	}
	return rec
}

func (a *Analyzer) analyze(ctx context.Context, stock contracts.StockSnapshot) (*contracts.Recommendation, error) {
	// Step 1: historical series.
	bars, source, err := a.history.FetchDaily(ctx, stock.Code, a.config.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty history")
	}
	if len(bars) < a.config.MinHistoryDays {
		return nil, fmt.Errorf("history too short: %d < %d days", len(bars), a.config.MinHistoryDays)
	}
	for i, bar := range bars {
		if !bar.Valid() {
			return nil, fmt.Errorf("bar %d misses required fields", i)
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"code":   stock.Code,
		"days":   len(bars),
		"source": source,
	}).Debug("History fetched")

	// Step 2: trend analysis.
	trendRes, err := a.trend.Analyze(ctx, bars, stock.Code)
	if err != nil {
		return nil, fmt.Errorf("trend analysis: %w", err)
	}

	// Step 3: composite score.
	score := a.compositeScore(trendRes, stock)
	if score < a.config.MinScore {
		return nil, fmt.Errorf("score %d below cutoff %d", score, a.config.MinScore)
	}

	// Steps 4-6: classification and risk.
	category := classify(trendRes, stock)
	risk := assessRisk(stock, bars)

	// Steps 7-8: rationale.
	reasons := buildReasons(trendRes, stock, category)
	warnings := buildRiskWarnings(trendRes, stock, risk)

	return contracts.NewRecommendation(stock, trendRes, score, category, risk, reasons, warnings)
}

// compositeScore blends the trend signal score with the market-heat score
// and clamps the result to [0,100].
func (a *Analyzer) compositeScore(trend contracts.TrendResult, stock contracts.StockSnapshot) int {
	heat := marketHeatScore(stock)
	score := int(math.Round(float64(trend.SignalScore)*a.config.TrendWeight + float64(heat)*a.config.HeatWeight))

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	a.logger.WithFields(map[string]interface{}{
		"code":      stock.Code,
		"trend":     trend.SignalScore,
		"heat":      heat,
		"composite": score,
	}).Debug("Composite score computed")

	return score
}

// marketHeatScore computes the 0-100 market-heat sub-score as the sum of
// three independently tiered components. Tier boundaries are deliberate;
// ties resolve toward the first matching tier.
func marketHeatScore(stock contracts.StockSnapshot) int {
	score := 0

	// Percentage-change component, max 50.
	change := stock.ChangePct
	switch {
	case change >= 3 && change <= 8:
		score += 50
	case change >= 1 && change < 3:
		score += 40
	case change > 8 && change <= 10:
		score += 35
	case change >= 0 && change < 1:
		score += 25
	case change > 10:
		score += 15
	default: // negative change
		score += 0
	}

	// Turnover-rate component, max 25.
	turnover := stock.TurnoverRate
	switch {
	case turnover >= 5 && turnover <= 15:
		score += 25
	case turnover >= 3 && turnover < 5:
		score += 20
	case turnover > 15 && turnover <= 20:
		score += 18
	case turnover >= 1 && turnover < 3:
		score += 12
	case turnover > 20:
		score += 8
	default:
		score += 5
	}

	// Traded-value component, max 25, in hundred-million CNY units.
	amount := stock.Amount / 1e8
	switch {
	case amount >= 50:
		score += 25
	case amount >= 20:
		score += 20
	case amount >= 10:
		score += 15
	case amount >= 5:
		score += 10
	default:
		score += 5
	}

	return score
}

// classify assigns exactly one category; rules are evaluated in priority
// order and the first match wins.
func classify(trend contracts.TrendResult, stock contracts.StockSnapshot) contracts.Category {
	bull := trend.Status.Bullish()
	price := trend.CurrentPrice

	if bull && stock.ChangePct > 5 {
		return contracts.CategoryStrongMomentum
	}

	if bull && trend.MA10 < price && price < trend.MA5 {
		return contracts.CategoryPullback
	}

	if trend.MA5 > trend.MA10 && trend.MA10 > trend.MA20 && math.Abs(trend.BiasMA5) < 3 {
		return contracts.CategoryBreakout
	}

	if bull && stock.PERatio != nil && *stock.PERatio > 0 && *stock.PERatio < 30 {
		return contracts.CategoryValue
	}

	return contracts.CategoryPotential
}

// assessRisk derives the base risk tier from the turnover/change
// combination, then escalates one tier when the recent closing-price
// volatility exceeds the threshold.
func assessRisk(stock contracts.StockSnapshot, bars []contracts.DailyBar) contracts.RiskLevel {
	turnover := stock.TurnoverRate
	change := stock.ChangePct

	var risk contracts.RiskLevel
	switch {
	case turnover > 15 && change > 8:
		risk = contracts.RiskHigh
	case turnover >= 5 && turnover <= 15 && change >= 3 && change <= 8:
		risk = contracts.RiskMedium
	case turnover < 5 && change < 3:
		risk = contracts.RiskLow
	case turnover > 15 || change > 8:
		risk = contracts.RiskHigh
	case turnover > 10 || change > 5:
		risk = contracts.RiskMedium
	default:
		risk = contracts.RiskLow
	}

	if vol, ok := closingVolatility(bars, volatilityWindow); ok && vol > volatilityThreshold {
		risk = risk.Escalate()
	}

	return risk
}

// closingVolatility computes sample standard deviation over mean of the
// most recent n closing prices. It uses the tail of whatever series was
// fetched, which may not align with the trend window.
func closingVolatility(bars []contracts.DailyBar, n int) (float64, bool) {
	if len(bars) < n {
		return 0, false
	}

	closes := make([]float64, n)
	for i, bar := range bars[len(bars)-n:] {
		closes[i] = bar.Close
	}

	m := stat.Mean(closes, nil)
	if m == 0 {
		return 0, false
	}

	return stat.StdDev(closes, nil) / m, true
}

// buildReasons assembles the recommendation rationale.
func buildReasons(trend contracts.TrendResult, stock contracts.StockSnapshot, category contracts.Category) []string {
	reasons := make([]string, 0, len(trend.SignalReasons)+3)
	reasons = append(reasons, trend.SignalReasons...)

	switch category {
	case contracts.CategoryStrongMomentum:
		reasons = append(reasons, fmt.Sprintf("Strong momentum: up %.2f%% today with high market attention", stock.ChangePct))
	case contracts.CategoryPullback:
		reasons = append(reasons, "Pullback: price retraced into the MA5-MA10 band, a favorable entry zone")
	case contracts.CategoryBreakout:
		reasons = append(reasons, "Breakout: moving averages just formed a bullish alignment")
	case contracts.CategoryValue:
		if stock.PERatio != nil {
			reasons = append(reasons, fmt.Sprintf("Value: P/E %.2f, valuation reasonable", *stock.PERatio))
		}
	}

	if stock.TurnoverRate >= 5 && stock.TurnoverRate <= 15 {
		reasons = append(reasons, fmt.Sprintf("Turnover %.2f%%, healthy trading activity", stock.TurnoverRate))
	}

	if stock.Amount/1e8 >= 10 {
		reasons = append(reasons, fmt.Sprintf("Traded value %.2f hundred million, high market attention", stock.Amount/1e8))
	}

	return reasons
}

// buildRiskWarnings assembles the risk rationale. It never returns an
// empty list: a candidate with nothing to warn about gets a generic
// low-risk notice.
func buildRiskWarnings(trend contracts.TrendResult, stock contracts.StockSnapshot, risk contracts.RiskLevel) []string {
	warnings := make([]string, 0, len(trend.RiskFactors)+3)
	warnings = append(warnings, trend.RiskFactors...)

	switch risk {
	case contracts.RiskHigh:
		warnings = append(warnings, "Risk level high: trade cautiously and keep position size small")
	case contracts.RiskMedium:
		warnings = append(warnings, "Risk level medium: participate moderately and mind your stop loss")
	}

	if stock.ChangePct > 8 {
		warnings = append(warnings, fmt.Sprintf("Sharp short-term rally (%.2f%%), watch for a pullback", stock.ChangePct))
	}

	if stock.TurnoverRate > 15 {
		warnings = append(warnings, fmt.Sprintf("Turnover overheated (%.2f%%), intense position churning", stock.TurnoverRate))
	}

	if len(warnings) == 0 {
		warnings = append(warnings, "Risk level low, but keep watching market conditions")
	}

	return warnings
}
