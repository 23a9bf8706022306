// Package correlation joins daily news signal with daily price change.
//
// The per-day CorrelationStrength it produces is a same-day co-movement
// magnitude, |avg_sentiment * price_change_pct| / 100. It is not a Pearson or
// Spearman correlation coefficient and must not be read as one.
package correlation

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/normalization"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/storage"
)

// DefaultWindowDays is the default trailing window for a correlation run.
const DefaultWindowDays = 30

// Options configures the Engine.
type Options struct {
	// WindowDays is the default trailing window. Values <= 0 use DefaultWindowDays.
	WindowDays int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Logger for diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Engine computes and stores DailyCorrelation rows.
type Engine struct {
	prices       storage.PriceBarStore
	news         storage.NewsStore
	correlations storage.CorrelationStore
	opts         Options
	locks        keyedMutex
}

// NewEngine creates a correlation engine.
func NewEngine(
	prices storage.PriceBarStore,
	news storage.NewsStore,
	correlations storage.CorrelationStore,
	opts Options,
) *Engine {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Engine{
		prices:       prices,
		news:         news,
		correlations: correlations,
		opts:         opts,
		locks:        keyedMutex{locks: make(map[string]*sync.Mutex)},
	}
}

// Window returns the [start, end] date range of a trailing window ending today (UTC).
func (e *Engine) Window(windowDays int) (start, end time.Time) {
	if windowDays <= 0 {
		windowDays = e.opts.WindowDays
	}
	end = domain.DateOf(e.opts.Now())
	start = end.AddDate(0, 0, -windowDays)
	return start, end
}

// Correlate computes one DailyCorrelation row per date with a defined price change
// in the trailing window and upserts them. windowDays <= 0 uses the engine default.
// A symbol without bars yields zero rows and no error.
//
// Runs for the same symbol are serialized; recomputation is idempotent.
func (e *Engine) Correlate(ctx context.Context, symbol string, windowDays int) ([]*domain.DailyCorrelation, error) {
	unlock := e.locks.lock(symbol)
	defer unlock()

	start, end := e.Window(windowDays)

	bars, err := e.prices.GetRange(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("load price bars for %s: %w", symbol, err)
	}
	changes := normalization.GeneratePriceChanges(bars)
	if len(changes) == 0 {
		return []*domain.DailyCorrelation{}, nil
	}

	items, err := e.news.GetRange(ctx, symbol, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("load news for %s: %w", symbol, err)
	}
	daily := normalization.AggregateNewsByDay(items)

	rows := Join(changes, daily)
	if err := e.correlations.UpsertBulk(ctx, rows); err != nil {
		return nil, fmt.Errorf("store correlations for %s: %w", symbol, err)
	}
	observability.RecordCorrelationRows(len(rows))

	return rows, nil
}

// CorrelateAll runs Correlate for each symbol in order.
// A failing symbol is logged and skipped; the returned map holds rows per symbol.
func (e *Engine) CorrelateAll(ctx context.Context, symbols []string, windowDays int) map[string][]*domain.DailyCorrelation {
	result := make(map[string][]*domain.DailyCorrelation, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		rows, err := e.Correlate(ctx, symbol, windowDays)
		if err != nil {
			e.opts.Logger.Printf("WARN correlation failed for %s: %v", symbol, err)
			continue
		}
		result[symbol] = rows
	}
	return result
}

// Join left-joins price changes with daily news aggregates on date.
// Dates without news produce rows with zero sentiment, impact and counts.
func Join(changes []*domain.PriceChange, daily map[time.Time]*normalization.DailyNews) []*domain.DailyCorrelation {
	rows := make([]*domain.DailyCorrelation, 0, len(changes))
	for _, c := range changes {
		row := &domain.DailyCorrelation{
			Symbol:         c.Symbol,
			Date:           domain.DateOf(c.Date),
			PriceChangePct: c.ChangePct,
		}
		if n, ok := daily[row.Date]; ok {
			row.AvgSentiment = n.AvgSentiment
			row.AvgImpact = n.AvgImpact
			row.NewsCount = n.Count
			row.PositiveCount = n.PositiveCount
			row.NegativeCount = n.NegativeCount
			row.NeutralCount = n.NeutralCount
		}
		row.CorrelationStrength = Strength(row.AvgSentiment, row.PriceChangePct)
		rows = append(rows, row)
	}
	return rows
}

// Strength returns the same-day co-movement magnitude
// |avgSentiment * priceChangePct| / 100, or 0 when avgSentiment is 0.
func Strength(avgSentiment, priceChangePct float64) float64 {
	if avgSentiment == 0 {
		return 0
	}
	return math.Abs(avgSentiment*priceChangePct) / 100
}

// keyedMutex serializes work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
