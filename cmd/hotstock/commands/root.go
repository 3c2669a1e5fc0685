package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	envName  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hotstock",
	Short: "Daily hot-stock recommendations for the A-share market",
	Long: `hotstock discovers actively traded stocks from the daily market
rankings, scores them against their recent trend and prints a Markdown
recommendation report.

Usage:
  go run ./cmd/hotstock [command]

Examples:
  go run ./cmd/hotstock recommend
  go run ./cmd/hotstock recommend --output reports/today.md
  go run ./cmd/hotstock schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags override the matching environment variables.
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")

	cobra.OnInitialize(func() {
		if envName != "" {
			os.Setenv("ENV", envName)
		}
		if logLevel != "" {
			os.Setenv("LOG_LEVEL", logLevel)
		}
	})
}
