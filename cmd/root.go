// Package cmd holds the evspare command line: the API server and its maintenance tasks.
package cmd

import (
	"fmt"
	"os"

	"evspare/internal/config"
	"evspare/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "evspare",
	Short:         "EV spare-parts storefront API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "evspare: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	return cfg, log, nil
}
