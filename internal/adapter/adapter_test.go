package adapter

import (
	"bytes"
	"log"
	"math"
	"testing"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/impact"
	"news-impact-lab/internal/sentiment"
)

// fixedScorer returns the same polarity for any text and records the last input.
type fixedScorer struct {
	value float64
	last  string
}

func (f *fixedScorer) Score(text string) (float64, error) {
	f.last = text
	return f.value, nil
}

func newTestAdapter(value float64) (*Adapter, *fixedScorer) {
	fs := &fixedScorer{value: value}
	return New(sentiment.NewSafe(fs, log.New(&bytes.Buffer{}, "", 0))), fs
}

func TestNormalize_Generic(t *testing.T) {
	a, fs := newTestAdapter(0.5)
	ts := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)

	item, ok := a.Normalize("aapl", GenericArticle{
		Title:       "Apple reports earnings",
		Description: "Quarterly results",
		URL:         "https://reuters.com/a",
		SourceName:  "Reuters",
		PublishedAt: ts,
	})
	if !ok {
		t.Fatal("Expected item")
	}
	if fs.last != "Apple reports earnings Quarterly results" {
		t.Errorf("Unexpected scorer input %q", fs.last)
	}
	if item.Symbol != "AAPL" {
		t.Errorf("Expected AAPL, got %s", item.Symbol)
	}
	if item.Source != "Reuters" {
		t.Errorf("Expected source verbatim, got %s", item.Source)
	}
	if item.SentimentScore != 0.5 || item.SentimentLabel != domain.SentimentPositive {
		t.Errorf("Unexpected sentiment %f %s", item.SentimentScore, item.SentimentLabel)
	}
	want := math.Min(0.5*1.2*1.1, 1)
	if math.Abs(item.ImpactScore-want) > 1e-9 {
		t.Errorf("Expected impact %f, got %f", want, item.ImpactScore)
	}
	if !item.PublishedAt.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, item.PublishedAt)
	}
	if len(item.DedupKey) != 64 {
		t.Errorf("Expected dedup key, got %q", item.DedupKey)
	}
}

func TestNormalize_PreScoredSkipsScorer(t *testing.T) {
	a, fs := newTestAdapter(0.9)

	item, ok := a.Normalize("MSFT", PreScoredArticle{
		Title:          "Microsoft update",
		SentimentScore: -0.3,
		Source:         "Alpha Vantage",
	})
	if !ok {
		t.Fatal("Expected item")
	}
	if fs.last != "" {
		t.Errorf("Expected scorer not to be called, got input %q", fs.last)
	}
	if item.SentimentScore != -0.3 {
		t.Errorf("Expected provider score -0.3, got %f", item.SentimentScore)
	}
	if item.SentimentLabel != domain.SentimentNegative {
		t.Errorf("Expected negative label, got %s", item.SentimentLabel)
	}
	want := 0.3 * impact.SpecializedSourceWeight
	if math.Abs(item.ImpactScore-want) > 1e-9 {
		t.Errorf("Expected impact %f, got %f", want, item.ImpactScore)
	}
}

func TestNormalize_PreScoredClamped(t *testing.T) {
	a, _ := newTestAdapter(0)
	item, ok := a.Normalize("MSFT", PreScoredArticle{Title: "x", SentimentScore: 1.7})
	if !ok {
		t.Fatal("Expected item")
	}
	if item.SentimentScore != 1 {
		t.Errorf("Expected clamp to 1, got %f", item.SentimentScore)
	}
}

func TestNormalize_HeadlineEpoch(t *testing.T) {
	a, fs := newTestAdapter(-0.2)

	item, ok := a.Normalize("NVDA", &HeadlineArticle{
		Headline: "NVIDIA faces probe",
		Summary:  "Regulators look into deal",
		Datetime: 1704110400,
	})
	if !ok {
		t.Fatal("Expected item")
	}
	if fs.last != "NVIDIA faces probe Regulators look into deal" {
		t.Errorf("Unexpected scorer input %q", fs.last)
	}
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(want) {
		t.Errorf("Expected %v, got %v", want, item.PublishedAt)
	}
	if item.URL != "" || item.Source != "" {
		t.Errorf("Expected empty optional fields, got url=%q source=%q", item.URL, item.Source)
	}
}

func TestNormalize_SkipsMissingHeadline(t *testing.T) {
	a, _ := newTestAdapter(0.5)

	recs := []Record{
		GenericArticle{Title: "  "},
		PreScoredArticle{},
		HeadlineArticle{Summary: "no headline"},
		(*GenericArticle)(nil),
	}
	for i, rec := range recs {
		if _, ok := a.Normalize("AAPL", rec); ok {
			t.Errorf("Record %d: expected skip", i)
		}
	}
}

func TestNormalizeAll_DropsSkipped(t *testing.T) {
	a, _ := newTestAdapter(0)
	items := a.NormalizeAll("AAPL", []Record{
		GenericArticle{Title: "one", URL: "https://a"},
		GenericArticle{},
		HeadlineArticle{Headline: "two"},
	})
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].SentimentLabel != domain.SentimentNeutral {
		t.Errorf("Expected neutral label, got %s", items[0].SentimentLabel)
	}
}
