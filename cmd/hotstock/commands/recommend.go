package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xmwMing/daily-stock-analysis/internal/analysis"
	"github.com/xmwMing/daily-stock-analysis/internal/discovery"
	"github.com/xmwMing/daily-stock-analysis/internal/external/eastmoney"
	"github.com/xmwMing/daily-stock-analysis/internal/pipeline"
	"github.com/xmwMing/daily-stock-analysis/internal/recommend"
	"github.com/xmwMing/daily-stock-analysis/internal/report"
	"github.com/xmwMing/daily-stock-analysis/internal/trend"
	"github.com/xmwMing/daily-stock-analysis/pkg/config"
	"github.com/xmwMing/daily-stock-analysis/pkg/httputil"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

var recommendOutput string

// recommendCmd runs one full recommendation pass and prints the report.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run one recommendation pass and print the report",
	Long: `Runs the full pipeline once: fetches the market rankings, filters
the candidates, scores each against its recent trend and prints the
Markdown report to stdout.

Example:
  go run ./cmd/hotstock recommend
  go run ./cmd/hotstock recommend --output reports/today.md`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVarP(&recommendOutput, "output", "o", "", "also write the report to this file")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	runner, _, err := initPipeline()
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	result := runner.Run(context.Background())

	fmt.Println(result.Report)

	if recommendOutput != "" {
		if dir := filepath.Dir(recommendOutput); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(recommendOutput, []byte(result.Report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

// initPipeline wires the full dependency graph from config.
func initPipeline() (*pipeline.Runner, *config.Config, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create HTTP client
	httpClient := httputil.New(cfg, log)

	// 4. Create the market data client
	market := eastmoney.NewClient(httpClient, log)

	// 5. Create discovery
	cache := discovery.NewRankingCache(cfg.Discovery.CacheTTL)
	finder := discovery.NewFinder(market, cache, discovery.Config{
		FetchCount:   cfg.Discovery.FetchCount,
		MinPrice:     cfg.Discovery.MinPrice,
		MaxPrice:     cfg.Discovery.MaxPrice,
		MinMarketCap: cfg.Discovery.MinMarketCap,
		MinListDays:  cfg.Discovery.MinListDays,
	}, log)

	// 6. Create analysis
	trendAnalyzer := trend.NewAnalyzer(log)
	stockAnalyzer := analysis.NewAnalyzer(market, trendAnalyzer, analysis.Config{
		HistoryDays:    cfg.Analysis.HistoryDays,
		MinHistoryDays: cfg.Analysis.MinHistoryDays,
		MinScore:       cfg.Analysis.MinScore,
		TrendWeight:    cfg.Analysis.TrendWeight,
		HeatWeight:     cfg.Analysis.HeatWeight,
	}, log)

	// 7. Create the orchestrator
	recommender := recommend.NewRecommender(stockAnalyzer, recommend.Config{
		MaxConcurrent: cfg.Recommend.MaxConcurrent,
		TaskTimeout:   cfg.Recommend.TaskTimeout,
		TopN:          cfg.Recommend.TopN,
		MinScore:      cfg.Analysis.MinScore,
	}, log)

	// 8. Assemble the pipeline
	runner := pipeline.NewRunner(finder, recommender, report.NewBuilder(), log)

	return runner, cfg, nil
}
