package correlation

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/idhash"
	"news-impact-lab/internal/storage/memory"
)

var testNow = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

type fixture struct {
	prices       *memory.PriceBarStore
	news         *memory.NewsStore
	correlations *memory.CorrelationStore
	engine       *Engine
}

func newFixture() *fixture {
	f := &fixture{
		prices:       memory.NewPriceBarStore(),
		news:         memory.NewNewsStore(),
		correlations: memory.NewCorrelationStore(),
	}
	f.engine = NewEngine(f.prices, f.news, f.correlations, Options{
		Now: func() time.Time { return testNow },
	})
	return f
}

func daysAgo(n int) time.Time {
	return domain.DateOf(testNow).AddDate(0, 0, -n)
}

func (f *fixture) addBar(t *testing.T, symbol string, date time.Time, close float64) {
	t.Helper()
	if err := f.prices.UpsertBulk(context.Background(), []*domain.PriceBar{
		{Symbol: symbol, Date: date, Close: close},
	}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}
}

func (f *fixture) addNews(t *testing.T, symbol, headline string, published time.Time, sentiment, impact float64) {
	t.Helper()
	_, err := f.news.InsertIgnore(context.Background(), &domain.NewsItem{
		DedupKey:       idhash.ComputeNewsKey(symbol, "", headline, published),
		Symbol:         symbol,
		Headline:       headline,
		SentimentScore: sentiment,
		SentimentLabel: domain.SentimentLabelFor(sentiment),
		ImpactScore:    impact,
		PublishedAt:    published,
	})
	if err != nil {
		t.Fatalf("InsertIgnore failed: %v", err)
	}
}

func TestCorrelate_Scenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addBar(t, "X", daysAgo(2), 100)
	f.addBar(t, "X", daysAgo(1), 105)
	f.addNews(t, "X", "news", daysAgo(1).Add(10*time.Hour), 0.2, 0.3)

	rows, err := f.engine.Correlate(ctx, "X", 0)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	r := rows[0]
	if math.Abs(r.PriceChangePct-5.0) > 1e-9 {
		t.Errorf("Expected price change 5.0, got %v", r.PriceChangePct)
	}
	if math.Abs(r.CorrelationStrength-0.01) > 1e-9 {
		t.Errorf("Expected strength 0.01, got %v", r.CorrelationStrength)
	}
	if r.NewsCount != 1 || r.PositiveCount != 1 {
		t.Errorf("Expected 1 positive news, got %+v", r)
	}

	stored, _ := f.correlations.GetLatest(ctx, "X", 10)
	if len(stored) != 1 {
		t.Errorf("Expected 1 stored row, got %d", len(stored))
	}
}

func TestCorrelate_DayWithoutNews(t *testing.T) {
	f := newFixture()

	f.addBar(t, "X", daysAgo(3), 100)
	f.addBar(t, "X", daysAgo(2), 90)
	f.addBar(t, "X", daysAgo(1), 99)
	f.addNews(t, "X", "news", daysAgo(1).Add(time.Hour), -0.5, 0.4)

	rows, err := f.engine.Correlate(context.Background(), "X", 30)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	noNews := rows[0]
	if noNews.NewsCount != 0 || noNews.AvgSentiment != 0 || noNews.AvgImpact != 0 {
		t.Errorf("Expected zero news values, got %+v", noNews)
	}
	if noNews.CorrelationStrength != 0 {
		t.Errorf("Expected strength 0 without news, got %v", noNews.CorrelationStrength)
	}
	if math.Abs(noNews.PriceChangePct-(-10)) > 1e-9 {
		t.Errorf("Expected -10, got %v", noNews.PriceChangePct)
	}
}

func TestCorrelate_ZeroSentimentZeroStrength(t *testing.T) {
	f := newFixture()

	f.addBar(t, "X", daysAgo(2), 100)
	f.addBar(t, "X", daysAgo(1), 150)
	f.addNews(t, "X", "up", daysAgo(1).Add(time.Hour), 0.5, 0.5)
	f.addNews(t, "X", "down", daysAgo(1).Add(2*time.Hour), -0.5, 0.5)

	rows, err := f.engine.Correlate(context.Background(), "X", 30)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].NewsCount != 2 {
		t.Errorf("Expected 2 news, got %d", rows[0].NewsCount)
	}
	if rows[0].CorrelationStrength != 0 {
		t.Errorf("Expected 0 strength for zero avg sentiment, got %v", rows[0].CorrelationStrength)
	}
}

func TestCorrelate_NoBars(t *testing.T) {
	f := newFixture()
	f.addNews(t, "X", "news", daysAgo(1), 0.5, 0.5)

	rows, err := f.engine.Correlate(context.Background(), "X", 30)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(rows))
	}
}

func TestCorrelate_WindowExcludesOldBars(t *testing.T) {
	f := newFixture()

	f.addBar(t, "X", daysAgo(40), 50)
	f.addBar(t, "X", daysAgo(5), 100)
	f.addBar(t, "X", daysAgo(4), 110)

	rows, err := f.engine.Correlate(context.Background(), "X", 30)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row (bar outside window is not a previous close), got %d", len(rows))
	}
	if math.Abs(rows[0].PriceChangePct-10) > 1e-9 {
		t.Errorf("Expected 10, got %v", rows[0].PriceChangePct)
	}
}

func TestCorrelate_RecomputeReplaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addBar(t, "X", daysAgo(2), 100)
	f.addBar(t, "X", daysAgo(1), 110)

	if _, err := f.engine.Correlate(ctx, "X", 30); err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}

	f.addNews(t, "X", "late news", daysAgo(1).Add(time.Hour), 0.4, 0.2)
	if _, err := f.engine.Correlate(ctx, "X", 30); err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}

	stored, _ := f.correlations.GetLatest(ctx, "X", 10)
	if len(stored) != 1 {
		t.Fatalf("Expected 1 row after recompute, got %d", len(stored))
	}
	if stored[0].NewsCount != 1 {
		t.Errorf("Expected recompute to replace row, got %+v", stored[0])
	}
}

func TestCorrelate_ConcurrentSameSymbol(t *testing.T) {
	f := newFixture()
	for i := 10; i >= 1; i-- {
		f.addBar(t, "X", daysAgo(i), float64(100+i))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.Correlate(context.Background(), "X", 30); err != nil {
				t.Errorf("Correlate failed: %v", err)
			}
		}()
	}
	wg.Wait()

	count, _ := f.correlations.Count(context.Background())
	if count != 9 {
		t.Errorf("Expected 9 rows, got %d", count)
	}
}

func TestStrength(t *testing.T) {
	if got := Strength(0, 50); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := Strength(-0.5, 4); math.Abs(got-0.02) > 1e-9 {
		t.Errorf("Expected 0.02, got %v", got)
	}
}
