package cli

import (
	"fmt"
	"os"

	"github.com/noetic-labs/noesis/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "noesis",
	Short: "Noesis: knowledge representation and reasoning core",
	Long: `Noesis is an append-only triple store with a knowledge base,
BDI agents, a three-paradigm reasoning engine and risk-budgeted
cognitive code validation layered on top.

Run the HTTP service:
  noesis serve

Apply database migrations (postgres provider):
  noesis migrate`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() {
	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(config.LogLevel())
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	return cfg.Build()
}
