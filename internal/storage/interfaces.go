package storage

import (
	"context"
	"time"

	"news-impact-lab/internal/domain"
)

// SectorStore provides access to sectors storage.
type SectorStore interface {
	// Upsert inserts or replaces a sector keyed by name.
	Upsert(ctx context.Context, s *domain.Sector) error

	// GetByName retrieves a sector. Returns ErrNotFound if not exists.
	GetByName(ctx context.Context, name string) (*domain.Sector, error)

	// List returns all sectors ordered by name ASC.
	List(ctx context.Context) ([]*domain.Sector, error)
}

// CompanyStore provides access to companies storage.
type CompanyStore interface {
	// Upsert inserts or replaces a company keyed by symbol.
	Upsert(ctx context.Context, c *domain.Company) error

	// GetBySymbol retrieves a company. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Company, error)

	// GetBySector retrieves all companies of a sector ordered by symbol ASC.
	GetBySector(ctx context.Context, sector string) ([]*domain.Company, error)
}

// PriceBarStore provides access to stock_prices storage.
type PriceBarStore interface {
	// UpsertBulk inserts or fully replaces bars keyed by (symbol, date).
	UpsertBulk(ctx context.Context, bars []*domain.PriceBar) error

	// GetRange retrieves bars for a symbol with date in [start, end] (inclusive),
	// ordered by date ASC.
	GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.PriceBar, error)

	// GetLatest retrieves up to limit most recent bars for a symbol, ordered by date DESC.
	GetLatest(ctx context.Context, symbol string, limit int) ([]*domain.PriceBar, error)
}

// NewsStore provides access to news_events storage.
// Rows are first-write-wins on dedup_key.
type NewsStore interface {
	// InsertIgnore inserts an item unless its dedup key exists.
	// Returns inserted=false for an existing key; the stored row is not modified.
	InsertIgnore(ctx context.Context, n *domain.NewsItem) (inserted bool, err error)

	// InsertIgnoreBulk inserts items, skipping existing keys. Returns the number inserted.
	InsertIgnoreBulk(ctx context.Context, items []*domain.NewsItem) (int, error)

	// GetSince retrieves items for a symbol with published_at >= since,
	// ordered by published_at DESC.
	GetSince(ctx context.Context, symbol string, since time.Time) ([]*domain.NewsItem, error)

	// GetRange retrieves items for a symbol with published_at in [start, end),
	// ordered by published_at ASC.
	GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.NewsItem, error)
}

// CorrelationStore provides access to price_news_correlation storage.
// Rows are last-write-wins on (symbol, date).
type CorrelationStore interface {
	// UpsertBulk inserts or replaces rows keyed by (symbol, date).
	UpsertBulk(ctx context.Context, rows []*domain.DailyCorrelation) error

	// GetLatest retrieves up to limit most recent rows for a symbol, ordered by date DESC.
	GetLatest(ctx context.Context, symbol string, limit int) ([]*domain.DailyCorrelation, error)

	// GetRange retrieves rows for a symbol with date in [start, end] (inclusive),
	// ordered by date ASC.
	GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.DailyCorrelation, error)
}

// Counter reports the number of stored rows. Implemented by every store.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Stores bundles the stores used by the pipeline.
type Stores struct {
	Sectors      SectorStore
	Companies    CompanyStore
	Prices       PriceBarStore
	News         NewsStore
	Correlations CorrelationStore
}

// Stats holds row counts per table.
type Stats struct {
	Sectors      int64 `json:"sectors"`
	Companies    int64 `json:"companies"`
	PriceBars    int64 `json:"stock_prices"`
	NewsItems    int64 `json:"news_events"`
	Correlations int64 `json:"price_news_correlation"`
}

// CollectStats counts rows in every store that implements Counter.
func CollectStats(ctx context.Context, s Stores) (Stats, error) {
	var stats Stats
	targets := []struct {
		store any
		dst   *int64
	}{
		{s.Sectors, &stats.Sectors},
		{s.Companies, &stats.Companies},
		{s.Prices, &stats.PriceBars},
		{s.News, &stats.NewsItems},
		{s.Correlations, &stats.Correlations},
	}
	for _, t := range targets {
		c, ok := t.store.(Counter)
		if !ok {
			continue
		}
		n, err := c.Count(ctx)
		if err != nil {
			return stats, err
		}
		*t.dst = n
	}
	return stats, nil
}
