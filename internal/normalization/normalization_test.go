package normalization

import (
	"math"
	"testing"
	"time"

	"news-impact-lab/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestGeneratePriceChanges_Basic(t *testing.T) {
	bars := []*domain.PriceBar{
		{Symbol: "X", Date: day(2), Close: 105},
		{Symbol: "X", Date: day(1), Close: 100},
	}

	result := GeneratePriceChanges(bars)

	if len(result) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(result))
	}
	if !result[0].Date.Equal(day(2)) {
		t.Errorf("Expected date %v, got %v", day(2), result[0].Date)
	}
	if math.Abs(result[0].ChangePct-5.0) > 1e-9 {
		t.Errorf("Expected 5.0, got %v", result[0].ChangePct)
	}
	if result[0].PrevClose != 100 {
		t.Errorf("Expected prev close 100, got %v", result[0].PrevClose)
	}
}

func TestGeneratePriceChanges_ExcludesFirstBar(t *testing.T) {
	bars := []*domain.PriceBar{
		{Symbol: "X", Date: day(1), Close: 100},
		{Symbol: "X", Date: day(2), Close: 110},
		{Symbol: "X", Date: day(3), Close: 99},
	}

	result := GeneratePriceChanges(bars)

	if len(result) != 2 {
		t.Fatalf("Expected 2 changes, got %d", len(result))
	}
	for _, c := range result {
		if c.Date.Equal(day(1)) {
			t.Error("First bar must not produce a change")
		}
	}
	if math.Abs(result[1].ChangePct-(-10.0)) > 1e-9 {
		t.Errorf("Expected -10.0, got %v", result[1].ChangePct)
	}
}

func TestGeneratePriceChanges_ZeroPrevClose(t *testing.T) {
	bars := []*domain.PriceBar{
		{Symbol: "X", Date: day(1), Close: 0},
		{Symbol: "X", Date: day(2), Close: 50},
		{Symbol: "X", Date: day(3), Close: 55},
	}

	result := GeneratePriceChanges(bars)

	if len(result) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(result))
	}
	if !result[0].Date.Equal(day(3)) {
		t.Errorf("Expected only day 3, got %v", result[0].Date)
	}
	for _, c := range result {
		if math.IsInf(c.ChangePct, 0) || math.IsNaN(c.ChangePct) {
			t.Errorf("Unexpected non-finite change %v", c.ChangePct)
		}
	}
}

func TestGeneratePriceChanges_Empty(t *testing.T) {
	if got := GeneratePriceChanges(nil); len(got) != 0 {
		t.Errorf("Expected no changes, got %d", len(got))
	}
	one := []*domain.PriceBar{{Symbol: "X", Date: day(1), Close: 100}}
	if got := GeneratePriceChanges(one); len(got) != 0 {
		t.Errorf("Expected no changes for single bar, got %d", len(got))
	}
}

func TestPercentChange(t *testing.T) {
	bars := []*domain.PriceBar{
		{Symbol: "X", Date: day(5), Close: 120},
		{Symbol: "X", Date: day(1), Close: 100},
		{Symbol: "X", Date: day(3), Close: 90},
	}
	if got := PercentChange(bars); math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected 20, got %v", got)
	}
	if got := PercentChange(bars[:1]); got != 0 {
		t.Errorf("Expected 0 for single bar, got %v", got)
	}
	zero := []*domain.PriceBar{
		{Symbol: "X", Date: day(1), Close: 0},
		{Symbol: "X", Date: day(2), Close: 10},
	}
	if got := PercentChange(zero); got != 0 {
		t.Errorf("Expected 0 for zero oldest close, got %v", got)
	}
}

func TestAggregateNewsByDay(t *testing.T) {
	items := []*domain.NewsItem{
		{PublishedAt: day(1).Add(9 * time.Hour), SentimentScore: 0.4, ImpactScore: 0.2, SentimentLabel: domain.SentimentPositive},
		{PublishedAt: day(1).Add(23 * time.Hour), SentimentScore: -0.2, ImpactScore: 0.4},
		{PublishedAt: day(2).Add(time.Hour), SentimentScore: 0.05, ImpactScore: 0.1},
	}

	result := AggregateNewsByDay(items)

	if len(result) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(result))
	}
	d1 := result[day(1)]
	if d1 == nil {
		t.Fatal("Expected aggregate for day 1")
	}
	if d1.Count != 2 {
		t.Errorf("Expected count 2, got %d", d1.Count)
	}
	if math.Abs(d1.AvgSentiment-0.1) > 1e-9 {
		t.Errorf("Expected avg sentiment 0.1, got %v", d1.AvgSentiment)
	}
	if math.Abs(d1.AvgImpact-0.3) > 1e-9 {
		t.Errorf("Expected avg impact 0.3, got %v", d1.AvgImpact)
	}
	if d1.PositiveCount != 1 || d1.NegativeCount != 1 || d1.NeutralCount != 0 {
		t.Errorf("Unexpected label counts %+v", d1)
	}
	if result[day(2)].NeutralCount != 1 {
		t.Errorf("Expected 1 neutral on day 2, got %d", result[day(2)].NeutralCount)
	}
}

func TestAggregateNewsByDay_UTCGrouping(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 2024-01-01 22:00 EST is 2024-01-02 03:00 UTC.
	items := []*domain.NewsItem{
		{PublishedAt: time.Date(2024, 1, 1, 22, 0, 0, 0, est), SentimentScore: 0.5},
	}
	result := AggregateNewsByDay(items)
	if _, ok := result[day(2)]; !ok {
		t.Errorf("Expected item grouped on UTC date 2024-01-02, got %v", result)
	}
}

func TestMeanScores(t *testing.T) {
	s, i := MeanScores(nil)
	if s != 0 || i != 0 {
		t.Errorf("Expected zeros, got %v %v", s, i)
	}
	s, i = MeanScores([]*domain.NewsItem{
		{SentimentScore: 0.2, ImpactScore: 0.5},
		{SentimentScore: -0.4, ImpactScore: 0.1},
	})
	if math.Abs(s-(-0.1)) > 1e-9 || math.Abs(i-0.3) > 1e-9 {
		t.Errorf("Expected (-0.1, 0.3), got (%v, %v)", s, i)
	}
}
