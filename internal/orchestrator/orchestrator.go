// Package orchestrator runs the full analysis pipeline for one or more sectors.
// It coordinates: catalog seeding → price ingestion → news ingestion →
// correlation → sector aggregation.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"news-impact-lab/internal/catalog"
	"news-impact-lab/internal/correlation"
	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/ingestion"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/sector"
	"news-impact-lab/internal/storage"
)

// Default lookbacks of a full run.
const (
	DefaultPriceLookbackDays = 90
	DefaultIngestNewsDays    = 14
)

// Orchestrator coordinates the pipeline execution.
type Orchestrator struct {
	stores     storage.Stores
	runner     *ingestion.Runner
	engine     *correlation.Engine
	aggregator *sector.Aggregator

	priceLookbackDays     int
	ingestNewsDays        int
	correlationWindowDays int

	now    func() time.Time
	logger *log.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Stores     storage.Stores
	Engine     *correlation.Engine
	Aggregator *sector.Aggregator

	// Runner performs ingestion. Nil skips both ingestion phases.
	Runner *ingestion.Runner

	PriceLookbackDays     int // Default: 90
	IngestNewsDays        int // Default: 14
	CorrelationWindowDays int // Default: correlation.DefaultWindowDays

	Now    func() time.Time
	Logger *log.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		stores:                opts.Stores,
		runner:                opts.Runner,
		engine:                opts.Engine,
		aggregator:            opts.Aggregator,
		priceLookbackDays:     opts.PriceLookbackDays,
		ingestNewsDays:        opts.IngestNewsDays,
		correlationWindowDays: opts.CorrelationWindowDays,
		now:                   opts.Now,
		logger:                opts.Logger,
	}
	if o.priceLookbackDays <= 0 {
		o.priceLookbackDays = DefaultPriceLookbackDays
	}
	if o.ingestNewsDays <= 0 {
		o.ingestNewsDays = DefaultIngestNewsDays
	}
	if o.correlationWindowDays <= 0 {
		o.correlationWindowDays = correlation.DefaultWindowDays
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	Sectors         []string
	Symbols         int
	PriceBars       int
	News            ingestion.NewsCounts
	CorrelationRows int
	Snapshots       []*domain.SectorSnapshot // in the order of Sectors
	Errors          []string                 // non-fatal provider and per-symbol failures
}

// SeedCatalog upserts every sector and company of the catalog.
func (o *Orchestrator) SeedCatalog(ctx context.Context) error {
	if o.stores.Sectors != nil {
		for _, s := range catalog.Sectors() {
			s := s
			if err := o.stores.Sectors.Upsert(ctx, &s); err != nil {
				return fmt.Errorf("seed sector %s: %w", s.Name, err)
			}
		}
	}
	if o.stores.Companies != nil {
		for _, c := range catalog.Companies() {
			c := c
			if err := o.stores.Companies.Upsert(ctx, &c); err != nil {
				return fmt.Errorf("seed company %s: %w", c.Symbol, err)
			}
		}
	}
	return nil
}

// Run executes the full pipeline for sectors.
// Phases:
//  1. Seed catalog
//  2. Ingest prices (lookback window)
//  3. Ingest news (ingest window)
//  4. Correlate every symbol
//  5. Build sector snapshots
//
// Unknown sector names fail the run before any work with catalog.ErrUnknownSector.
func (o *Orchestrator) Run(ctx context.Context, sectors []string) (result *RunResult, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		observability.RecordPipelineRun("full", status, time.Since(start).Seconds())
	}()

	symbols, err := o.resolve(sectors)
	if err != nil {
		return nil, err
	}
	result = &RunResult{Sectors: sectors, Symbols: len(symbols)}

	o.logger.Printf("Phase 1: Seeding catalog...")
	if err := o.phase("seed", func() error { return o.SeedCatalog(ctx) }); err != nil {
		return nil, fmt.Errorf("phase 1 (seed catalog) failed: %w", err)
	}

	today := domain.DateOf(o.now())
	if o.runner != nil {
		o.logger.Printf("Phase 2: Ingesting prices for %d symbols...", len(symbols))
		err := o.phase("prices", func() error {
			res, err := o.runner.RunPrices(ctx, symbols, today.AddDate(0, 0, -o.priceLookbackDays), today)
			result.PriceBars = res.PriceBars
			result.Errors = append(result.Errors, providerErrors(res)...)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("phase 2 (price ingestion) failed: %w", err)
		}
		o.logger.Printf("  Stored %d price bars", result.PriceBars)

		o.logger.Printf("Phase 3: Ingesting news...")
		err = o.phase("news", func() error {
			res, err := o.runner.RunNews(ctx, symbols, today.AddDate(0, 0, -o.ingestNewsDays), o.now())
			result.News = res.News
			result.Errors = append(result.Errors, providerErrors(res)...)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("phase 3 (news ingestion) failed: %w", err)
		}
		o.logger.Printf("  Stored %d articles (%d duplicates, %d skipped)",
			result.News.Stored, result.News.Duplicates, result.News.Skipped)
	} else {
		o.logger.Printf("Phase 2-3: Skipping ingestion (no runner)")
	}

	o.logger.Printf("Phase 4: Correlating %d symbols over %d days...", len(symbols), o.correlationWindowDays)
	err = o.phase("correlate", func() error {
		for _, symbol := range symbols {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := o.engine.Correlate(ctx, symbol, o.correlationWindowDays)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.logger.Printf("WARN correlate %s: %v", symbol, err)
				result.Errors = append(result.Errors, fmt.Sprintf("correlate %s: %v", symbol, err))
				continue
			}
			result.CorrelationRows += len(rows)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("phase 4 (correlation) failed: %w", err)
	}
	o.logger.Printf("  Wrote %d correlation rows", result.CorrelationRows)

	o.logger.Printf("Phase 5: Building sector snapshots...")
	err = o.phase("aggregate", func() error {
		for _, name := range sectors {
			snap, err := o.aggregator.Analyze(ctx, name)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", name, err)
			}
			result.Snapshots = append(result.Snapshots, snap)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("phase 5 (aggregation) failed: %w", err)
	}

	o.logger.Printf("Pipeline completed: %d sectors, %d symbols, %d bars, %d articles, %d correlation rows, %d errors",
		len(sectors), len(symbols), result.PriceBars, result.News.Stored, result.CorrelationRows, len(result.Errors))
	return result, nil
}

// resolve validates sectors and returns their rosters concatenated, without repeats.
func (o *Orchestrator) resolve(sectors []string) ([]string, error) {
	seen := make(map[string]bool)
	var symbols []string
	for _, name := range sectors {
		roster, err := catalog.Roster(name)
		if err != nil {
			return nil, err
		}
		for _, symbol := range roster {
			if !seen[symbol] {
				seen[symbol] = true
				symbols = append(symbols, symbol)
			}
		}
	}
	return symbols, nil
}

func (o *Orchestrator) phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "success"
	if err != nil {
		status = "failure"
	}
	observability.RecordPipelineRun(name, status, time.Since(start).Seconds())
	return err
}

func providerErrors(res ingestion.Result) []string {
	out := make([]string, 0, len(res.ProviderErrors))
	for _, e := range res.ProviderErrors {
		out = append(out, e.Error())
	}
	return out
}
