package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/idhash"
	"news-impact-lab/internal/storage"
)

func TestPostgresStores(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("catalog", func(t *testing.T) { testCatalog(t, pool) })
	t.Run("price_bars", func(t *testing.T) { testPriceBars(t, pool) })
	t.Run("news", func(t *testing.T) { testNews(t, pool) })
	t.Run("correlations", func(t *testing.T) { testCorrelations(t, pool) })
	t.Run("stats", func(t *testing.T) { testStats(t, pool) })
}

func testCatalog(t *testing.T, pool *Pool) {
	ctx := context.Background()
	sectors := NewSectorStore(pool)
	companies := NewCompanyStore(pool)

	require.NoError(t, sectors.Upsert(ctx, &domain.Sector{Name: "defense", Code: "DEF", Description: "Defense"}))
	require.NoError(t, sectors.Upsert(ctx, &domain.Sector{Name: "defense", Code: "DEF", Description: "Defense and aerospace"}))

	got, err := sectors.GetByName(ctx, "defense")
	require.NoError(t, err)
	assert.Equal(t, "Defense and aerospace", got.Description)

	_, err = sectors.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, companies.Upsert(ctx, &domain.Company{
		Symbol: "LMT", Name: "Lockheed Martin Corp", Sector: "defense", Exchange: domain.ExchangeNYSE,
	}))
	require.NoError(t, companies.Upsert(ctx, &domain.Company{Symbol: "ZZZ", Name: "Unassigned"}))

	c, err := companies.GetBySymbol(ctx, "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, "", c.Sector)

	list, err := companies.GetBySector(ctx, "defense")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "LMT", list[0].Symbol)

	_, err = companies.GetBySymbol(ctx, "NOPE")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testPriceBars(t *testing.T, pool *Pool) {
	ctx := context.Background()
	store := NewPriceBarStore(pool)
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, store.UpsertBulk(ctx, []*domain.PriceBar{
		{Symbol: "AAPL", Date: day(1), Close: 100, Volume: 10},
		{Symbol: "AAPL", Date: day(2), Close: 105, Volume: 20},
		{Symbol: "AAPL", Date: day(3), Close: 103, Volume: 30},
	}))
	// Restatement
	require.NoError(t, store.UpsertBulk(ctx, []*domain.PriceBar{
		{Symbol: "AAPL", Date: day(2), Close: 106, Volume: 21},
	}))

	bars, err := store.GetRange(ctx, "AAPL", day(1), day(2))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Date.Equal(day(1)))
	assert.Equal(t, 106.0, bars[1].Close)
	assert.Equal(t, int64(21), bars[1].Volume)

	latest, err := store.GetLatest(ctx, "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Date.Equal(day(3)))

	assert.ErrorIs(t, store.UpsertBulk(ctx, []*domain.PriceBar{{Symbol: ""}}), storage.ErrInvalidInput)
}

func testNews(t *testing.T, pool *Pool) {
	ctx := context.Background()
	store := NewNewsStore(pool)
	ts := time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

	item := func(url, headline string, score float64) *domain.NewsItem {
		return &domain.NewsItem{
			DedupKey:       idhash.ComputeNewsKey("AAPL", url, headline, ts),
			Symbol:         "AAPL",
			Headline:       headline,
			URL:            url,
			Source:         "Reuters",
			SentimentScore: score,
			SentimentLabel: domain.SentimentLabelFor(score),
			ImpactScore:    0.5,
			PublishedAt:    ts,
		}
	}

	inserted, err := store.InsertIgnore(ctx, item("https://example.com/1", "first", 0.4))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertIgnore(ctx, item("https://example.com/1", "rewritten", -0.4))
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate must be ignored")

	n, err := store.InsertIgnoreBulk(ctx, []*domain.NewsItem{
		item("https://example.com/1", "again", 0),
		item("https://example.com/2", "second", 0),
		item("", "third", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := store.GetSince(ctx, "AAPL", ts.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 3)

	for _, it := range items {
		if it.URL == "https://example.com/1" {
			assert.Equal(t, "first", it.Headline, "first write wins")
			assert.Equal(t, 0.4, it.SentimentScore)
		}
	}

	rng, err := store.GetRange(ctx, "AAPL", ts, ts.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, rng, 3)

	// Score outside [-1, 1] violates the CHECK constraint.
	bad := item("https://example.com/bad", "bad", 0)
	bad.SentimentScore = 2
	_, err = store.InsertIgnore(ctx, bad)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Concurrent ingestion of the same article leaves one row.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.InsertIgnore(ctx, item("https://example.com/race", "race", 0.1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err = store.GetSince(ctx, "AAPL", ts.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func testCorrelations(t *testing.T, pool *Pool) {
	ctx := context.Background()
	store := NewCorrelationStore(pool)
	day := func(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, store.UpsertBulk(ctx, []*domain.DailyCorrelation{
		{Symbol: "AAPL", Date: day(1), PriceChangePct: 1, CorrelationStrength: 0.1},
		{Symbol: "AAPL", Date: day(2), PriceChangePct: 2, CorrelationStrength: 0.2},
	}))
	require.NoError(t, store.UpsertBulk(ctx, []*domain.DailyCorrelation{
		{Symbol: "AAPL", Date: day(2), PriceChangePct: 3, NewsCount: 2, PositiveCount: 2, CorrelationStrength: 0.3},
	}))

	rows, err := store.GetRange(ctx, "AAPL", day(1), day(28))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3.0, rows[1].PriceChangePct, "last write wins")
	assert.Equal(t, 2, rows[1].PositiveCount)

	latest, err := store.GetLatest(ctx, "AAPL", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.True(t, latest[0].Date.Equal(day(2)))
}

func testStats(t *testing.T, pool *Pool) {
	stats, err := storage.CollectStats(context.Background(), NewStores(pool))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Sectors)
	assert.Equal(t, int64(2), stats.Companies)
	assert.Equal(t, int64(3), stats.PriceBars)
	assert.Equal(t, int64(4), stats.NewsItems)
	assert.Equal(t, int64(2), stats.Correlations)
}
