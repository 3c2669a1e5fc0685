package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/internal/discovery"
	"github.com/xmwMing/daily-stock-analysis/internal/recommend"
	"github.com/xmwMing/daily-stock-analysis/internal/report"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

type stubSource struct {
	rows []contracts.QuoteRow
	err  error
}

func (s *stubSource) FetchAllQuotes(ctx context.Context) ([]contracts.QuoteRow, error) {
	return s.rows, s.err
}

// stubAnalyzer qualifies every candidate with a fixed score.
type stubAnalyzer struct {
	score int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, stock contracts.StockSnapshot) *contracts.Recommendation {
	rec, err := contracts.NewRecommendation(
		stock,
		contracts.TrendResult{Status: contracts.TrendBull},
		a.score,
		contracts.CategoryPotential,
		contracts.RiskLow,
		[]string{"stub"},
		[]string{"stub"},
	)
	if err != nil {
		return nil
	}
	return rec
}

func newTestRunner(source contracts.QuoteSource, analyzer recommend.StockAnalyzer) *Runner {
	log := logger.NewNop()
	finder := discovery.NewFinder(source, discovery.NewRankingCache(30*time.Minute), discovery.DefaultConfig(), log)
	recommender := recommend.NewRecommender(analyzer, recommend.DefaultConfig(), log)
	return NewRunner(finder, recommender, report.NewBuilder(), log)
}

func TestRunner_Run(t *testing.T) {
	source := &stubSource{rows: []contracts.QuoteRow{
		{Code: "600519", Name: "Moutai", Price: 100, ChangePct: 4, Amount: 5e9, TurnoverRate: 7, MarketCap: 1e11},
		{Code: "000001", Name: "Pingan Bank", Price: 50, ChangePct: 3, Amount: 4e9, TurnoverRate: 6, MarketCap: 8e10},
	}}

	result := newTestRunner(source, &stubAnalyzer{score: 80}).Run(context.Background())

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, 2, result.Stats.TotalAfterFilter)
	assert.Contains(t, result.Report, "Moutai")
	assert.Contains(t, result.Report, "**2** stocks recommended")
}

func TestRunner_RunDegradesToEmptyReport(t *testing.T) {
	source := &stubSource{err: errors.New("network down")}

	result := newTestRunner(source, &stubAnalyzer{score: 80}).Run(context.Background())

	assert.Empty(t, result.Recommendations)
	assert.Contains(t, result.Report, "No suitable recommendations")
}
