package ingestion

import (
	"context"
	"fmt"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/normalization"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/storage"
)

// Manager moves fetched records into storage.
// Duplicate news are rejected by the store (first write wins); price bars are upserted.
type Manager struct {
	adapter *adapter.Adapter
	news    storage.NewsStore
	prices  storage.PriceBarStore
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Adapter    *adapter.Adapter // Default: adapter.New(nil)
	NewsStore  storage.NewsStore
	PriceStore storage.PriceBarStore
}

// NewManager creates a new ingestion manager.
func NewManager(opts ManagerOptions) *Manager {
	a := opts.Adapter
	if a == nil {
		a = adapter.New(nil)
	}
	return &Manager{
		adapter: a,
		news:    opts.NewsStore,
		prices:  opts.PriceStore,
	}
}

// NewsCounts summarizes one news ingestion step.
type NewsCounts struct {
	Fetched    int
	Stored     int
	Duplicates int
	Skipped    int // malformed records dropped by the adapter
}

// Add accumulates other into c.
func (c *NewsCounts) Add(other NewsCounts) {
	c.Fetched += other.Fetched
	c.Stored += other.Stored
	c.Duplicates += other.Duplicates
	c.Skipped += other.Skipped
}

// IngestNews normalizes recs for symbol and stores them with insert-or-ignore.
func (m *Manager) IngestNews(ctx context.Context, provider, symbol string, recs []adapter.Record) (NewsCounts, error) {
	counts := NewsCounts{Fetched: len(recs)}
	if m.news == nil || len(recs) == 0 {
		return counts, nil
	}

	items := m.adapter.NormalizeAll(symbol, recs)
	counts.Skipped = len(recs) - len(items)

	if len(items) > 0 {
		stored, err := m.news.InsertIgnoreBulk(ctx, items)
		if err != nil {
			return counts, fmt.Errorf("store news for %s: %w", symbol, err)
		}
		counts.Stored = stored
		counts.Duplicates = len(items) - stored
	}

	observability.RecordArticles(provider, counts.Fetched, counts.Stored, counts.Duplicates, counts.Skipped)
	return counts, nil
}

// IngestPrices stores bars in date order. Returns the number of bars written.
func (m *Manager) IngestPrices(ctx context.Context, bars []*domain.PriceBar) (int, error) {
	if m.prices == nil || len(bars) == 0 {
		return 0, nil
	}

	normalization.SortPriceBars(bars)
	if err := m.prices.UpsertBulk(ctx, bars); err != nil {
		return 0, fmt.Errorf("store price bars: %w", err)
	}

	observability.RecordPriceBars(len(bars))
	return len(bars), nil
}

// Consume stores streamed records until in is closed or ctx is done.
// Returns the accumulated counts; a store error stops consumption.
func (m *Manager) Consume(ctx context.Context, provider string, in <-chan adapter.Envelope) (NewsCounts, error) {
	var total NewsCounts
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case env, ok := <-in:
			if !ok {
				return total, nil
			}
			counts, err := m.ingestOne(ctx, provider, env)
			total.Add(counts)
			if err != nil {
				return total, err
			}
		}
	}
}

func (m *Manager) ingestOne(ctx context.Context, provider string, env adapter.Envelope) (NewsCounts, error) {
	counts := NewsCounts{Fetched: 1}
	item, ok := m.adapter.Normalize(env.Symbol, env.Record)
	if !ok {
		counts.Skipped = 1
		observability.RecordArticles(provider, 1, 0, 0, 1)
		return counts, nil
	}

	inserted, err := m.news.InsertIgnore(ctx, item)
	if err != nil {
		return counts, fmt.Errorf("store streamed news for %s: %w", env.Symbol, err)
	}
	if inserted {
		counts.Stored = 1
	} else {
		counts.Duplicates = 1
	}
	observability.RecordArticles(provider, 1, counts.Stored, counts.Duplicates, 0)
	return counts, nil
}
