package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// Config defines scoring orchestration parameters.
type Config struct {
	MaxConcurrent int           // worker goroutines
	TaskTimeout   time.Duration // per-stock analysis deadline
	TopN          int           // recommendations kept after sorting
	MinScore      int           // defensive re-check of the analyzer cutoff
}

// DefaultConfig returns the default orchestration configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 10,
		TaskTimeout:   60 * time.Second,
		TopN:          5,
		MinScore:      60,
	}
}

// StockAnalyzer analyzes one candidate. A nil result means the candidate
// did not qualify or could not be analyzed.
type StockAnalyzer interface {
	Analyze(ctx context.Context, stock contracts.StockSnapshot) *contracts.Recommendation
}

// Recommender fans candidates out to a fixed worker pool, collects the
// qualifying recommendations and keeps the top N by score.
type Recommender struct {
	analyzer StockAnalyzer
	config   Config
	logger   *logger.Logger
}

// NewRecommender creates a new Recommender.
func NewRecommender(analyzer StockAnalyzer, config Config, log *logger.Logger) *Recommender {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	return &Recommender{
		analyzer: analyzer,
		config:   config,
		logger:   log.WithField("module", "recommend"),
	}
}

// Recommend analyzes all candidates concurrently and returns at most TopN
// recommendations sorted by score descending. An empty candidate list
// returns an empty result without starting any worker.
func (r *Recommender) Recommend(ctx context.Context, stocks []contracts.StockSnapshot) []contracts.Recommendation {
	if len(stocks) == 0 {
		r.logger.Info("No candidates to analyze")
		return nil
	}

	startTime := time.Now()

	workers := r.config.MaxConcurrent
	if workers > len(stocks) {
		workers = len(stocks)
	}

	stockCh := make(chan contracts.StockSnapshot, len(stocks))
	resultCh := make(chan *contracts.Recommendation, len(stocks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go r.worker(ctx, &wg, stockCh, resultCh)
	}

	for _, stock := range stocks {
		stockCh <- stock
	}
	close(stockCh)

	wg.Wait()
	close(resultCh)

	recommendations := make([]contracts.Recommendation, 0, len(stocks))
	for rec := range resultCh {
		if rec == nil {
			continue
		}
		if rec.Score < r.config.MinScore {
			continue
		}
		recommendations = append(recommendations, *rec)
	}

	sort.Slice(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	if r.config.TopN > 0 && len(recommendations) > r.config.TopN {
		recommendations = recommendations[:r.config.TopN]
	}

	r.logger.WithFields(map[string]interface{}{
		"candidates": len(stocks),
		"qualified":  len(recommendations),
		"workers":    workers,
		"duration":   time.Since(startTime),
	}).Info("Recommendation pass completed")

	return recommendations
}

// worker analyzes candidates from stockCh until it is drained. Each task
// runs under its own deadline so one slow fetch cannot stall the pool.
func (r *Recommender) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	stockCh <-chan contracts.StockSnapshot,
	resultCh chan<- *contracts.Recommendation,
) {
	defer wg.Done()

	for stock := range stockCh {
		taskCtx := ctx
		cancel := context.CancelFunc(func() {})
		if r.config.TaskTimeout > 0 {
			taskCtx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		}

		resultCh <- r.analyzer.Analyze(taskCtx, stock)
		cancel()
	}
}
