package adapter

import (
	"strings"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/idhash"
	"news-impact-lab/internal/impact"
	"news-impact-lab/internal/sentiment"
)

// Adapter normalizes records into scored news items.
type Adapter struct {
	scorer *sentiment.Safe
}

// New creates an adapter that scores generic and headline records with scorer.
func New(scorer *sentiment.Safe) *Adapter {
	if scorer == nil {
		scorer = sentiment.NewSafe(nil, nil)
	}
	return &Adapter{scorer: scorer}
}

// Normalize maps rec into a canonical NewsItem for symbol.
// Returns ok=false when the record has no usable headline or is of an unknown variant.
func (a *Adapter) Normalize(symbol string, rec Record) (item *domain.NewsItem, ok bool) {
	switch r := rec.(type) {
	case GenericArticle:
		return a.generic(symbol, r)
	case *GenericArticle:
		if r == nil {
			return nil, false
		}
		return a.generic(symbol, *r)
	case PreScoredArticle:
		return a.preScored(symbol, r)
	case *PreScoredArticle:
		if r == nil {
			return nil, false
		}
		return a.preScored(symbol, *r)
	case HeadlineArticle:
		return a.headline(symbol, r)
	case *HeadlineArticle:
		if r == nil {
			return nil, false
		}
		return a.headline(symbol, *r)
	default:
		return nil, false
	}
}

// NormalizeAll maps every record, dropping skipped ones.
func (a *Adapter) NormalizeAll(symbol string, recs []Record) []*domain.NewsItem {
	items := make([]*domain.NewsItem, 0, len(recs))
	for _, rec := range recs {
		if item, ok := a.Normalize(symbol, rec); ok {
			items = append(items, item)
		}
	}
	return items
}

func (a *Adapter) generic(symbol string, r GenericArticle) (*domain.NewsItem, bool) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, false
	}
	polarity := a.scorer.Score(title + " " + r.Description)
	score := impact.Score(impact.Input{
		Title:    title,
		Summary:  r.Description,
		Source:   r.SourceName,
		Polarity: polarity,
	})
	return build(symbol, title, r.Description, r.SourceName, r.URL, polarity, score, r.PublishedAt), true
}

func (a *Adapter) preScored(symbol string, r PreScoredArticle) (*domain.NewsItem, bool) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, false
	}
	polarity := sentiment.Clamp(r.SentimentScore)
	score := impact.Score(impact.Input{
		Title:        title,
		Summary:      r.Summary,
		Source:       r.Source,
		Polarity:     polarity,
		PreScoredAPI: true,
	})
	return build(symbol, title, r.Summary, r.Source, r.URL, polarity, score, r.PublishedAt), true
}

func (a *Adapter) headline(symbol string, r HeadlineArticle) (*domain.NewsItem, bool) {
	headline := strings.TrimSpace(r.Headline)
	if headline == "" {
		return nil, false
	}
	var published time.Time
	if r.Datetime > 0 {
		published = time.Unix(r.Datetime, 0).UTC()
	}
	polarity := a.scorer.Score(headline + " " + r.Summary)
	score := impact.Score(impact.Input{
		Title:       headline,
		Summary:     r.Summary,
		Source:      r.Source,
		Polarity:    polarity,
		HeadlineAPI: true,
	})
	return build(symbol, headline, r.Summary, r.Source, r.URL, polarity, score, published), true
}

func build(symbol, headline, summary, source, url string, polarity, impactScore float64, published time.Time) *domain.NewsItem {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	url = strings.TrimSpace(url)
	if !published.IsZero() {
		published = published.UTC()
	}
	return &domain.NewsItem{
		DedupKey:       idhash.ComputeNewsKey(symbol, url, headline, published),
		Symbol:         symbol,
		Headline:       headline,
		Summary:        strings.TrimSpace(summary),
		Source:         strings.TrimSpace(source),
		URL:            url,
		SentimentScore: polarity,
		SentimentLabel: domain.SentimentLabelFor(polarity),
		ImpactScore:    impactScore,
		PublishedAt:    published,
	}
}
