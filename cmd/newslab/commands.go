package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/providers"
	"news-impact-lab/internal/reporting"
	"news-impact-lab/internal/storage"
)

// withApp loads settings, builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// --- Seed Command ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the sector and company catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.orchestrator.SeedCatalog(ctx); err != nil {
				return err
			}
			a.logger.Println("Catalog seeded")
			return nil
		})
	},
}

// --- Ingest Command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest [sector...]",
	Short: "Fetch daily prices and news for sector rosters",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectors, err := resolveSectors(args)
		if err != nil {
			return err
		}
		symbols, err := rosterSymbols(sectors)
		if err != nil {
			return err
		}
		skipPrices, _ := cmd.Flags().GetBool("skip-prices")
		skipNews, _ := cmd.Flags().GetBool("skip-news")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			today := domain.DateOf(time.Now())

			if !skipPrices {
				from := today.AddDate(0, 0, -a.cfg.Analysis.PriceLookbackDays)
				res, err := a.runner.RunPrices(ctx, symbols, from, today)
				if err != nil {
					return fmt.Errorf("price ingestion: %w", err)
				}
				a.logger.Printf("Stored %d price bars for %d symbols (%d provider errors)",
					res.PriceBars, res.Symbols, len(res.ProviderErrors))
			}

			if !skipNews {
				from := today.AddDate(0, 0, -a.cfg.Analysis.IngestNewsDays)
				res, err := a.runner.RunNews(ctx, symbols, from, time.Now())
				if err != nil {
					return fmt.Errorf("news ingestion: %w", err)
				}
				a.logger.Printf("Fetched %d articles: %d stored, %d duplicates, %d skipped (%d provider errors)",
					res.News.Fetched, res.News.Stored, res.News.Duplicates, res.News.Skipped, len(res.ProviderErrors))
			}
			return nil
		})
	},
}

func init() {
	ingestCmd.Flags().Bool("skip-prices", false, "do not fetch price bars")
	ingestCmd.Flags().Bool("skip-news", false, "do not fetch news")
}

// --- Correlate Command ---

var correlateCmd = &cobra.Command{
	Use:   "correlate [sector...]",
	Short: "Recompute daily price/news correlation rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectors, err := resolveSectors(args)
		if err != nil {
			return err
		}
		symbols, err := rosterSymbols(sectors)
		if err != nil {
			return err
		}
		window, _ := cmd.Flags().GetInt("window")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			results := a.engine.CorrelateAll(ctx, symbols, window)
			for _, symbol := range symbols {
				rows, ok := results[symbol]
				if !ok {
					a.logger.Printf("  %s: failed", symbol)
					continue
				}
				a.logger.Printf("  %s: %d rows", symbol, len(rows))
			}
			return ctx.Err()
		})
	},
}

func init() {
	correlateCmd.Flags().Int("window", 0, "trailing window in days (default: analysis.correlation_window_days)")
}

// --- Sector Command ---

var sectorCmd = &cobra.Command{
	Use:   "sector <name>",
	Short: "Print the JSON snapshot of a sector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			snap, err := a.aggregator.Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			return reporting.WriteSnapshotJSON(cmd.OutOrStdout(), snap)
		})
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [sector...]",
	Short: "Run the full pipeline: seed, ingest, correlate, aggregate",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectors, err := resolveSectors(args)
		if err != nil {
			return err
		}
		outputDir, _ := cmd.Flags().GetString("output-dir")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			result, err := a.orchestrator.Run(ctx, sectors)
			if err != nil {
				return err
			}

			for _, e := range result.Errors {
				a.logger.Printf("WARN %s", e)
			}

			if outputDir == "" {
				return nil
			}
			start, end := a.engine.Window(a.cfg.Analysis.CorrelationWindowDays)
			exporter := reporting.NewExporter(a.stores.Correlations, outputDir)
			for _, snap := range result.Snapshots {
				files, err := exporter.Export(ctx, snap, start, end)
				if err != nil {
					return err
				}
				a.logger.Printf("Exported %s: %s", snap.Sector, files.JSON)
			}
			return writeSummary(a.logger, outputDir, result.Snapshots)
		})
	},
}

func init() {
	runCmd.Flags().String("output-dir", "", "write per-sector reports to this directory")
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export [sector...]",
	Short: "Write JSON, Markdown, CSV and Parquet reports for sectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectors, err := resolveSectors(args)
		if err != nil {
			return err
		}
		outputDir, _ := cmd.Flags().GetString("output-dir")

		return withApp(cmd, func(ctx context.Context, a *app) error {
			start, end := a.engine.Window(a.cfg.Analysis.CorrelationWindowDays)
			exporter := reporting.NewExporter(a.stores.Correlations, outputDir)

			var snapshots []*domain.SectorSnapshot
			for _, name := range sectors {
				snap, err := a.aggregator.Analyze(ctx, name)
				if err != nil {
					return err
				}
				files, err := exporter.Export(ctx, snap, start, end)
				if err != nil {
					return err
				}
				a.logger.Printf("Exported %s: %s, %s, %s, %s", name, files.JSON, files.Markdown, files.CSV, files.Parquet)
				snapshots = append(snapshots, snap)
			}
			return writeSummary(a.logger, outputDir, snapshots)
		})
	},
}

func init() {
	exportCmd.Flags().String("output-dir", "reports", "output directory")
}

func writeSummary(logger *log.Logger, dir string, snapshots []*domain.SectorSnapshot) error {
	path := filepath.Join(dir, "summary.md")
	if err := os.WriteFile(path, []byte(reporting.RenderMarkdown(snapshots)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Printf("Wrote %s", path)
	return nil
}

// --- Stats Command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			stats, err := storage.CollectStats(ctx, a.stores)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		})
	},
}

// --- Stream Command ---

var streamCmd = &cobra.Command{
	Use:   "stream [sector...]",
	Short: "Store live Finnhub headlines for sector rosters until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectors, err := resolveSectors(args)
		if err != nil {
			return err
		}
		symbols, err := rosterSymbols(sectors)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			if a.cfg.Providers.Finnhub.APIKey == "" {
				return fmt.Errorf("stream: %w", providers.ErrMissingAPIKey)
			}
			stream, err := providers.DialStream(ctx, a.cfg.Providers.Finnhub.WSURL, a.cfg.Providers.Finnhub.APIKey, nil, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = stream.Close() }()

			for _, symbol := range symbols {
				if err := stream.Subscribe(symbol); err != nil {
					return fmt.Errorf("subscribe %s: %w", symbol, err)
				}
			}
			a.logger.Printf("Streaming news for %d symbols", len(symbols))

			counts, err := a.manager.Consume(ctx, "finnhub_stream", stream.News())
			a.logger.Printf("Stream stopped: %d received, %d stored, %d duplicates, %d skipped",
				counts.Fetched, counts.Stored, counts.Duplicates, counts.Skipped)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return stream.Err()
		})
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /metrics and /health until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Metrics.Addr
		}

		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", observability.Handler())

		server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		errCh := make(chan error, 1)
		go func() {
			logger.Printf("Metrics server listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		logger.Println("Shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: metrics.addr)")
}
