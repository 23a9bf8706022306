package memory

import (
	"context"
	"testing"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

func TestCorrelationStore_LastWriteWins(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	if err := store.UpsertBulk(ctx, []*domain.DailyCorrelation{
		{Symbol: "AAPL", Date: date(2), PriceChangePct: 1, CorrelationStrength: 0.01},
	}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}
	if err := store.UpsertBulk(ctx, []*domain.DailyCorrelation{
		{Symbol: "AAPL", Date: date(2), PriceChangePct: 2, CorrelationStrength: 0.02},
	}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	rows, err := store.GetRange(ctx, "AAPL", date(1), date(3))
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].PriceChangePct != 2 {
		t.Errorf("Expected latest computation to win, got %v", rows[0].PriceChangePct)
	}
}

func TestCorrelationStore_GetLatest(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	var rows []*domain.DailyCorrelation
	for d := 1; d <= 15; d++ {
		rows = append(rows, &domain.DailyCorrelation{Symbol: "AAPL", Date: date(d), CorrelationStrength: float64(d)})
	}
	if err := store.UpsertBulk(ctx, rows); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	latest, _ := store.GetLatest(ctx, "AAPL", 10)
	if len(latest) != 10 {
		t.Fatalf("Expected 10 rows, got %d", len(latest))
	}
	if latest[0].CorrelationStrength != 15 {
		t.Errorf("Expected newest first, got %v", latest[0].CorrelationStrength)
	}
}

func TestCollectStats(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()

	_ = stores.Sectors.Upsert(ctx, &domain.Sector{Name: "defense", Code: "DEF"})
	_ = stores.Companies.Upsert(ctx, &domain.Company{Symbol: "LMT", Sector: "defense"})
	_ = stores.Prices.UpsertBulk(ctx, []*domain.PriceBar{{Symbol: "LMT", Date: date(1), Close: 1}})

	stats, err := storage.CollectStats(ctx, stores)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}
	if stats.Sectors != 1 || stats.Companies != 1 || stats.PriceBars != 1 || stats.NewsItems != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
