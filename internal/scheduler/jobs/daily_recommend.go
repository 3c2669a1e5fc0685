package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xmwMing/daily-stock-analysis/internal/pipeline"
	"github.com/xmwMing/daily-stock-analysis/pkg/config"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// DailyRecommendJob runs the full recommendation pipeline after the market
// close and writes the report to the configured output directory.
type DailyRecommendJob struct {
	runner *pipeline.Runner
	config *config.Config
	logger *logger.Logger
}

// NewDailyRecommendJob creates a new daily recommendation job.
func NewDailyRecommendJob(runner *pipeline.Runner, cfg *config.Config, log *logger.Logger) *DailyRecommendJob {
	return &DailyRecommendJob{
		runner: runner,
		config: cfg,
		logger: log,
	}
}

// Name returns the job name.
func (j *DailyRecommendJob) Name() string {
	return "daily_recommend"
}

// Schedule returns the cron schedule.
func (j *DailyRecommendJob) Schedule() string {
	return j.config.Schedule.Cron
}

// Run executes the pipeline and persists the report.
func (j *DailyRecommendJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled recommendation run")

	result := j.runner.Run(ctx)

	path, err := j.writeReport(result.Report)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"recommendations": len(result.Recommendations),
		"report":          path,
		"duration":        result.Duration,
	}).Info("Scheduled recommendation run completed")

	return nil
}

// writeReport stores the report under a date-stamped filename.
func (j *DailyRecommendJob) writeReport(content string) (string, error) {
	dir := j.config.Schedule.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("recommendations_%s.md", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}

	return path, nil
}
