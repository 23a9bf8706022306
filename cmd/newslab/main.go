// Package main provides the newslab command line.
//
// Subcommands seed the catalog, ingest prices and news, correlate, build
// sector snapshots, export reports, stream live headlines and serve metrics.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"news-impact-lab/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "newslab",
	Short:         "News impact analysis for sector stock rosters",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/newslab.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend override (memory, postgres)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(sectorCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadSettings reads the config named by --config (or the default search
// path), applies --backend, validates it and builds the logger.
func loadSettings(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, log.New(os.Stdout, cfg.Logging.Prefix, cfg.Logging.Flags), nil
}
