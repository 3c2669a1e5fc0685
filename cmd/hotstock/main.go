package main

import (
	"os"

	"github.com/xmwMing/daily-stock-analysis/cmd/hotstock/commands"
)

// main is the entry point for the hotstock CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
