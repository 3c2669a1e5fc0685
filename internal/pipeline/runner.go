package pipeline

import (
	"context"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/contracts"
	"github.com/xmwMing/daily-stock-analysis/internal/discovery"
	"github.com/xmwMing/daily-stock-analysis/internal/recommend"
	"github.com/xmwMing/daily-stock-analysis/internal/report"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// Result is the outcome of one full pipeline run.
type Result struct {
	Recommendations []contracts.Recommendation
	Stats           discovery.Stats
	Report          string
	Duration        time.Duration
}

// Runner wires discovery, scoring and reporting into one pass.
type Runner struct {
	finder      *discovery.Finder
	recommender *recommend.Recommender
	builder     *report.Builder
	logger      *logger.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(finder *discovery.Finder, recommender *recommend.Recommender, builder *report.Builder, log *logger.Logger) *Runner {
	return &Runner{
		finder:      finder,
		recommender: recommender,
		builder:     builder,
		logger:      log.WithField("module", "pipeline"),
	}
}

// Run executes one full pass. It always produces a report: a failed or
// empty discovery yields the no-candidates variant rather than an error.
func (r *Runner) Run(ctx context.Context) Result {
	startTime := time.Now()

	stocks, stats := r.finder.Discover(ctx)
	recommendations := r.recommender.Recommend(ctx, stocks)
	doc := r.builder.Build(recommendations, stats)

	result := Result{
		Recommendations: recommendations,
		Stats:           stats,
		Report:          doc,
		Duration:        time.Since(startTime),
	}

	r.logger.WithFields(map[string]interface{}{
		"candidates":      stats.TotalAfterFilter,
		"recommendations": len(recommendations),
		"duration":        result.Duration,
	}).Info("Pipeline run completed")

	return result
}
