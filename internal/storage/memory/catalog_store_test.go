package memory

import (
	"context"
	"errors"
	"testing"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

func TestCompanyStore_UpsertAndGet(t *testing.T) {
	store := NewCompanyStore()
	ctx := context.Background()

	c := &domain.Company{Symbol: "LMT", Name: "Lockheed Martin Corp", Sector: "defense", Exchange: domain.ExchangeNYSE}
	if err := store.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "LMT")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if got.Name != c.Name {
		t.Errorf("Name mismatch: got %s, want %s", got.Name, c.Name)
	}

	list, _ := store.GetBySector(ctx, "defense")
	if len(list) != 1 {
		t.Errorf("Expected 1 company in sector, got %d", len(list))
	}

	_, err = store.GetBySymbol(ctx, "NOPE")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSectorStore_List(t *testing.T) {
	store := NewSectorStore()
	ctx := context.Background()

	_ = store.Upsert(ctx, &domain.Sector{Name: "technology", Code: "TECH"})
	_ = store.Upsert(ctx, &domain.Sector{Name: "defense", Code: "DEF"})

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "defense" {
		t.Errorf("Expected sorted sectors, got %+v", list)
	}

	if err := store.Upsert(ctx, &domain.Sector{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
