package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/catalog"
	"news-impact-lab/internal/config"
	"news-impact-lab/internal/correlation"
	"news-impact-lab/internal/ingestion"
	"news-impact-lab/internal/orchestrator"
	"news-impact-lab/internal/providers"
	"news-impact-lab/internal/ratelimit"
	"news-impact-lab/internal/sector"
	"news-impact-lab/internal/sentiment"
	"news-impact-lab/internal/storage"
	chstore "news-impact-lab/internal/storage/clickhouse"
	"news-impact-lab/internal/storage/memory"
	"news-impact-lab/internal/storage/migrations"
	pgstore "news-impact-lab/internal/storage/postgres"
)

// app holds the components built from one Config.
type app struct {
	cfg    *config.Config
	logger *log.Logger

	stores       storage.Stores
	manager      *ingestion.Manager
	runner       *ingestion.Runner
	engine       *correlation.Engine
	aggregator   *sector.Aggregator
	orchestrator *orchestrator.Orchestrator

	closers []func()
}

// newApp opens the configured stores and wires the pipeline around them.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	stores, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.stores = stores

	scorer := sentiment.NewSafe(sentiment.NewLexiconScorer(), logger)
	a.manager = ingestion.NewManager(ingestion.ManagerOptions{
		Adapter:    adapter.New(scorer),
		NewsStore:  stores.News,
		PriceStore: stores.Prices,
	})

	a.runner = ingestion.NewRunner(ingestion.RunnerOptions{
		Manager:      a.manager,
		NewsSources:  newsSources(cfg),
		PriceSources: priceSources(cfg),
		Limiters:     limiterSet(cfg.RateLimits),
		Workers:      cfg.Analysis.Workers,
		CallTimeout:  cfg.Providers.Timeout,
		Logger:       logger,
	})

	a.engine = correlation.NewEngine(stores.Prices, stores.News, stores.Correlations, correlation.Options{
		WindowDays: cfg.Analysis.CorrelationWindowDays,
		Logger:     logger,
	})

	a.aggregator = sector.NewAggregator(stores.Prices, stores.News, stores.Correlations, sector.Options{
		NewsWindowDays:     cfg.Analysis.NewsWindowDays,
		PriceBars:          cfg.Analysis.PriceBars,
		CorrelationHistory: cfg.Analysis.CorrelationHistory,
		RecentNews:         cfg.Analysis.RecentNews,
		Logger:             logger,
	})

	a.orchestrator = orchestrator.New(orchestrator.Options{
		Stores:                stores,
		Engine:                a.engine,
		Aggregator:            a.aggregator,
		Runner:                a.runner,
		PriceLookbackDays:     cfg.Analysis.PriceLookbackDays,
		IngestNewsDays:        cfg.Analysis.IngestNewsDays,
		CorrelationWindowDays: cfg.Analysis.CorrelationWindowDays,
		Logger:                logger,
	})

	return a, nil
}

func (a *app) openStores(ctx context.Context) (storage.Stores, error) {
	var stores storage.Stores

	switch a.cfg.Storage.Backend {
	case config.BackendPostgres:
		a.logger.Println("Connecting to PostgreSQL...")
		pool, err := pgstore.NewPool(ctx, a.cfg.Storage.PostgresDSN)
		if err != nil {
			return stores, err
		}
		a.closers = append(a.closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return stores, fmt.Errorf("postgres migrations: %w", err)
		}
		stores = pgstore.NewStores(pool)
	default:
		a.logger.Println("Using in-memory stores")
		stores = memory.NewStores()
	}

	if a.cfg.Storage.ClickHouseDSN != "" {
		a.logger.Println("Connecting to ClickHouse...")
		conn, err := migrations.RunClickhouseMigrations(ctx, a.cfg.Storage.ClickHouseDSN)
		if err != nil {
			return stores, fmt.Errorf("clickhouse migrations: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })

		stores.Prices = chstore.NewPriceBarStore(conn)
		stores.Correlations = chstore.NewCorrelationStore(conn)
	}

	return stores, nil
}

// Close releases store connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// newsSources returns the news providers that have credentials configured.
// RSS needs no key and is enabled whenever feeds are listed.
func newsSources(cfg *config.Config) []ingestion.NewsSource {
	p := cfg.Providers
	var sources []ingestion.NewsSource

	if p.NewsAPI.APIKey != "" {
		sources = append(sources, providers.NewNewsAPI(p.NewsAPI.APIKey, endpointOptions(p.Timeout, p.NewsAPI.BaseURL)...))
	}
	if p.AlphaVantage.APIKey != "" {
		sources = append(sources, providers.NewAlphaVantage(p.AlphaVantage.APIKey, endpointOptions(p.Timeout, p.AlphaVantage.BaseURL)...))
	}
	if p.Finnhub.APIKey != "" {
		sources = append(sources, providers.NewFinnhub(p.Finnhub.APIKey, endpointOptions(p.Timeout, p.Finnhub.BaseURL)...))
	}
	if len(p.RSSFeeds) > 0 {
		sources = append(sources, providers.NewRSS(p.RSSFeeds, &http.Client{Timeout: p.Timeout}))
	}

	return sources
}

// priceSources returns the daily bar providers. Yahoo needs no key.
func priceSources(cfg *config.Config) []ingestion.PriceSource {
	p := cfg.Providers
	return []ingestion.PriceSource{
		providers.NewYahoo(endpointOptions(p.Timeout, p.Yahoo.BaseURL)...),
	}
}

func endpointOptions(timeout time.Duration, baseURL string) []providers.ClientOption {
	var opts []providers.ClientOption
	if timeout > 0 {
		opts = append(opts, providers.WithTimeout(timeout))
	}
	if baseURL != "" {
		opts = append(opts, providers.WithBaseURL(baseURL))
	}
	return opts
}

// limiterSet builds one token bucket per provider class.
func limiterSet(rl config.RateLimitsConfig) *ratelimit.Set {
	clock := ratelimit.RealClock()
	return ratelimit.NewSet(map[ratelimit.Class]*ratelimit.Limiter{
		ratelimit.ClassGeneric:   ratelimit.New(rl.Generic.Burst, rl.Generic.Interval, clock),
		ratelimit.ClassPreScored: ratelimit.New(rl.PreScored.Burst, rl.PreScored.Interval, clock),
		ratelimit.ClassHeadline:  ratelimit.New(rl.Headline.Burst, rl.Headline.Interval, clock),
		ratelimit.ClassPrice:     ratelimit.New(rl.Price.Burst, rl.Price.Interval, clock),
	})
}

// resolveSectors validates names against the catalog. No names selects every sector.
func resolveSectors(names []string) ([]string, error) {
	if len(names) == 0 {
		return catalog.SectorNames(), nil
	}
	for _, name := range names {
		if _, err := catalog.Lookup(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// rosterSymbols returns the deduplicated union of the sectors' rosters.
func rosterSymbols(sectors []string) ([]string, error) {
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
