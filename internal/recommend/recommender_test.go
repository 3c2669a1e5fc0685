package recommend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// scoreAnalyzer maps stock codes to fixed scores; unknown codes do not
// qualify.
type scoreAnalyzer struct {
	mu     sync.Mutex
	scores map[string]int
	calls  int
}

func (a *scoreAnalyzer) Analyze(ctx context.Context, stock contracts.StockSnapshot) *contracts.Recommendation {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	score, ok := a.scores[stock.Code]
	if !ok {
		return nil
	}

	rec, err := contracts.NewRecommendation(
		stock,
		contracts.TrendResult{Status: contracts.TrendBull},
		score,
		contracts.CategoryPotential,
		contracts.RiskLow,
		nil,
		nil,
	)
	if err != nil {
		return nil
	}
	return rec
}

func snapshots(codes ...string) []contracts.StockSnapshot {
	stocks := make([]contracts.StockSnapshot, len(codes))
	for i, code := range codes {
		stocks[i] = contracts.StockSnapshot{Code: code, Name: "Stock " + code}
	}
	return stocks
}

func TestRecommender_RecommendEmptyInput(t *testing.T) {
	analyzer := &scoreAnalyzer{}
	r := NewRecommender(analyzer, DefaultConfig(), logger.NewNop())

	recs := r.Recommend(context.Background(), nil)

	assert.Empty(t, recs)
	assert.Equal(t, 0, analyzer.calls, "no worker should start for empty input")
}

func TestRecommender_RecommendSortsAndTruncates(t *testing.T) {
	analyzer := &scoreAnalyzer{scores: map[string]int{
		"600001": 70,
		"600002": 95,
		"600003": 80,
		"600004": 65,
		"600005": 90,
		"600006": 85,
		"600007": 75,
	}}

	cfg := DefaultConfig()
	cfg.TopN = 5
	r := NewRecommender(analyzer, cfg, logger.NewNop())

	recs := r.Recommend(context.Background(), snapshots(
		"600001", "600002", "600003", "600004", "600005", "600006", "600007",
	))

	require.Len(t, recs, 5)
	want := []int{95, 90, 85, 80, 75}
	for i, rec := range recs {
		assert.Equal(t, want[i], rec.Score)
	}
	assert.Equal(t, 7, analyzer.calls)
}

func TestRecommender_RecommendDropsUnqualified(t *testing.T) {
	analyzer := &scoreAnalyzer{scores: map[string]int{
		"600001": 80,
		// 600002 missing: analyzer returns nil
		"600003": 55, // below the defensive cutoff
	}}

	r := NewRecommender(analyzer, DefaultConfig(), logger.NewNop())
	recs := r.Recommend(context.Background(), snapshots("600001", "600002", "600003"))

	require.Len(t, recs, 1)
	assert.Equal(t, "600001", recs[0].Stock.Code)
}

func TestRecommender_RecommendFewerThanTopN(t *testing.T) {
	analyzer := &scoreAnalyzer{scores: map[string]int{
		"600001": 80,
		"600002": 70,
	}}

	r := NewRecommender(analyzer, DefaultConfig(), logger.NewNop())
	recs := r.Recommend(context.Background(), snapshots("600001", "600002"))

	assert.Len(t, recs, 2)
}

// blockingAnalyzer waits for its context so per-task deadlines can be
// observed.
type blockingAnalyzer struct{}

func (a *blockingAnalyzer) Analyze(ctx context.Context, stock contracts.StockSnapshot) *contracts.Recommendation {
	<-ctx.Done()
	return nil
}

func TestRecommender_RecommendTaskTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaskTimeout = 10 * time.Millisecond

	r := NewRecommender(&blockingAnalyzer{}, cfg, logger.NewNop())

	done := make(chan []contracts.Recommendation, 1)
	go func() {
		done <- r.Recommend(context.Background(), snapshots("600001", "600002"))
	}()

	select {
	case recs := <-done:
		assert.Empty(t, recs)
	case <-time.After(2 * time.Second):
		t.Fatal("recommend did not honor the per-task timeout")
	}
}
