package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/idhash"
	"news-impact-lab/internal/storage"
)

func newsItem(symbol, url, headline string, published time.Time, sentiment float64) *domain.NewsItem {
	return &domain.NewsItem{
		DedupKey:       idhash.ComputeNewsKey(symbol, url, headline, published),
		Symbol:         symbol,
		Headline:       headline,
		URL:            url,
		SentimentScore: sentiment,
		SentimentLabel: domain.SentimentLabelFor(sentiment),
		PublishedAt:    published,
	}
}

func TestNewsStore_InsertIgnoreIdempotent(t *testing.T) {
	store := NewNewsStore()
	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	first := newsItem("AAPL", "https://example.com/a", "Original headline", ts, 0.3)
	inserted, err := store.InsertIgnore(ctx, first)
	if err != nil {
		t.Fatalf("InsertIgnore failed: %v", err)
	}
	if !inserted {
		t.Fatal("Expected first insert to succeed")
	}

	second := newsItem("AAPL", "https://example.com/a", "Edited headline", ts, -0.9)
	inserted, err = store.InsertIgnore(ctx, second)
	if err != nil {
		t.Fatalf("InsertIgnore failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate to be ignored")
	}

	items, err := store.GetSince(ctx, "AAPL", ts.Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetSince failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Headline != "Original headline" || items[0].SentimentScore != 0.3 {
		t.Errorf("Expected first write to win, got %+v", items[0])
	}
}

func TestNewsStore_InsertIgnoreBulk(t *testing.T) {
	store := NewNewsStore()
	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	items := []*domain.NewsItem{
		newsItem("AAPL", "https://a", "one", ts, 0),
		newsItem("AAPL", "https://a", "one again", ts, 0),
		newsItem("AAPL", "", "two", ts, 0),
		newsItem("MSFT", "https://a", "other symbol", ts, 0),
	}

	n, err := store.InsertIgnoreBulk(ctx, items)
	if err != nil {
		t.Fatalf("InsertIgnoreBulk failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 inserted, got %d", n)
	}

	n, err = store.InsertIgnoreBulk(ctx, items)
	if err != nil {
		t.Fatalf("InsertIgnoreBulk failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 inserted on re-ingest, got %d", n)
	}

	count, _ := store.Count(ctx)
	if count != 3 {
		t.Errorf("Expected 3 rows, got %d", count)
	}
}

func TestNewsStore_InvalidInput(t *testing.T) {
	store := NewNewsStore()
	_, err := store.InsertIgnore(context.Background(), &domain.NewsItem{Symbol: "AAPL"})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestNewsStore_Ordering(t *testing.T) {
	store := NewNewsStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * 24 * time.Hour)
		if _, err := store.InsertIgnore(ctx, newsItem("AAPL", "", "h", ts, 0)); err != nil {
			t.Fatalf("InsertIgnore failed: %v", err)
		}
	}

	since, _ := store.GetSince(ctx, "AAPL", base.Add(48*time.Hour))
	if len(since) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(since))
	}
	for i := 1; i < len(since); i++ {
		if since[i].PublishedAt.After(since[i-1].PublishedAt) {
			t.Error("GetSince must be ordered by published_at DESC")
		}
	}

	rng, _ := store.GetRange(ctx, "AAPL", base, base.Add(48*time.Hour))
	if len(rng) != 2 {
		t.Fatalf("Expected 2 items in half-open range, got %d", len(rng))
	}
	if rng[0].PublishedAt.After(rng[1].PublishedAt) {
		t.Error("GetRange must be ordered by published_at ASC")
	}
}

func TestNewsStore_ConcurrentDuplicateInsert(t *testing.T) {
	store := NewNewsStore()
	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.InsertIgnore(ctx, newsItem("AAPL", "https://same", "same", ts, 0.1))
			if err != nil {
				t.Errorf("InsertIgnore failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if inserted != 1 {
		t.Errorf("Expected exactly 1 successful insert, got %d", inserted)
	}
	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}
}
