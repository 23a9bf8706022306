package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/ratelimit"
)

// Default runner settings.
const (
	DefaultWorkers     = 5
	DefaultCallTimeout = 10 * time.Second
)

// Runner fans ingestion out over symbols on a bounded worker pool.
// Provider failures are logged and counted; they never abort the batch.
type Runner struct {
	manager      *Manager
	newsSources  []NewsSource
	priceSources []PriceSource
	limiters     *ratelimit.Set
	workers      int
	callTimeout  time.Duration
	logger       *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Manager      *Manager
	NewsSources  []NewsSource
	PriceSources []PriceSource
	Limiters     *ratelimit.Set // Default: no limiting
	Workers      int            // Default: 5
	CallTimeout  time.Duration  // Default: 10s per provider call
	Logger       *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		manager:      opts.Manager,
		newsSources:  opts.NewsSources,
		priceSources: opts.PriceSources,
		limiters:     opts.Limiters,
		workers:      workers,
		callTimeout:  callTimeout,
		logger:       logger,
	}
}

// ProviderError records a failed provider call.
type ProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Provider, e.Symbol, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }

// Result summarizes an ingestion run.
type Result struct {
	Symbols        int
	News           NewsCounts
	PriceBars      int
	ProviderErrors []ProviderError
}

type collector struct {
	mu     sync.Mutex
	result Result
}

func (c *collector) addNews(counts NewsCounts) {
	c.mu.Lock()
	c.result.News.Add(counts)
	c.mu.Unlock()
}

func (c *collector) addBars(n int) {
	c.mu.Lock()
	c.result.PriceBars += n
	c.mu.Unlock()
}

func (c *collector) addError(e ProviderError) {
	c.mu.Lock()
	c.result.ProviderErrors = append(c.result.ProviderErrors, e)
	c.mu.Unlock()
}

// RunNews fetches news for every symbol from every news source within [from, to].
// Returns an error only for store failures or cancellation.
func (r *Runner) RunNews(ctx context.Context, symbols []string, from, to time.Time) (Result, error) {
	c := &collector{result: Result{Symbols: len(symbols)}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			for _, src := range r.newsSources {
				recs, err := r.fetchNews(gctx, src, symbol, from, to)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.providerFailed(c, src.Name(), symbol, err)
					continue
				}

				counts, err := r.manager.IngestNews(gctx, src.Name(), symbol, recs)
				if err != nil {
					return err
				}
				c.addNews(counts)
			}
			return nil
		})
	}

	err := g.Wait()
	r.logger.Printf("News ingestion: %d symbols, fetched=%d stored=%d duplicates=%d skipped=%d provider_errors=%d",
		len(symbols), c.result.News.Fetched, c.result.News.Stored, c.result.News.Duplicates,
		c.result.News.Skipped, len(c.result.ProviderErrors))
	return c.result, err
}

// RunPrices fetches daily bars for every symbol within [from, to]. The first
// price source that returns bars wins for a symbol.
func (r *Runner) RunPrices(ctx context.Context, symbols []string, from, to time.Time) (Result, error) {
	c := &collector{result: Result{Symbols: len(symbols)}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			for _, src := range r.priceSources {
				bars, err := r.fetchPrices(gctx, src, symbol, from, to)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.providerFailed(c, src.Name(), symbol, err)
					continue
				}
				if len(bars) == 0 {
					continue
				}

				n, err := r.manager.IngestPrices(gctx, bars)
				if err != nil {
					return err
				}
				c.addBars(n)
				return nil
			}
			return nil
		})
	}

	err := g.Wait()
	r.logger.Printf("Price ingestion: %d symbols, bars=%d provider_errors=%d",
		len(symbols), c.result.PriceBars, len(c.result.ProviderErrors))
	return c.result, err
}

func (r *Runner) fetchNews(ctx context.Context, src NewsSource, symbol string, from, to time.Time) ([]adapter.Record, error) {
	if err := r.wait(ctx, src.Class()); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return src.FetchNews(callCtx, symbol, from, to)
}

func (r *Runner) fetchPrices(ctx context.Context, src PriceSource, symbol string, from, to time.Time) ([]*domain.PriceBar, error) {
	if err := r.wait(ctx, src.Class()); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return src.FetchPrices(callCtx, symbol, from, to)
}

func (r *Runner) wait(ctx context.Context, class ratelimit.Class) error {
	waited, err := r.limiters.For(class).Wait(ctx)
	observability.RecordRateLimitWait(string(class), waited.Seconds())
	return err
}

func (r *Runner) providerFailed(c *collector, provider, symbol string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", r.callTimeout, err)
	}
	r.logger.Printf("WARN %s: fetch %s failed: %v", provider, symbol, err)
	c.addError(ProviderError{Provider: provider, Symbol: symbol, Err: err})
}
