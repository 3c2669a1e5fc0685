package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xmwMing/daily-stock-analysis/internal/scheduler"
	"github.com/xmwMing/daily-stock-analysis/internal/scheduler/jobs"
	"github.com/xmwMing/daily-stock-analysis/pkg/logger"
)

// scheduleCmd runs the recommendation pipeline on a cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the recommendation pipeline on a daily schedule",
	Long: `Starts the scheduler daemon. The pipeline runs after the market
close on weekdays and writes a date-stamped report to the output
directory.

The schedule and output directory come from SCHEDULE_CRON and
SCHEDULE_OUTPUT_DIR. Stop with Ctrl+C.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	runner, cfg, err := initPipeline()
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	log := logger.New(cfg)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDailyRecommendJob(runner, cfg, log)); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down scheduler...")
	sched.Stop()

	return nil
}
