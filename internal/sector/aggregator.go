// Package sector reduces per-symbol news, price and correlation history into
// a sector-level snapshot.
package sector

import (
	"context"
	"log"
	"math"
	"time"

	"news-impact-lab/internal/catalog"
	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/normalization"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/storage"
)

// Default lookback parameters.
const (
	DefaultNewsWindowDays     = 7
	DefaultPriceBars          = 5
	DefaultCorrelationHistory = 10
	DefaultRecentNews         = 3
)

// Options configures the Aggregator. Zero values use the defaults above.
type Options struct {
	NewsWindowDays     int
	PriceBars          int
	CorrelationHistory int
	RecentNews         int
	Now                func() time.Time
	Logger             *log.Logger
}

// Aggregator builds SectorSnapshots from stored data.
type Aggregator struct {
	prices       storage.PriceBarStore
	news         storage.NewsStore
	correlations storage.CorrelationStore
	opts         Options
}

// NewAggregator creates a sector aggregator.
func NewAggregator(
	prices storage.PriceBarStore,
	news storage.NewsStore,
	correlations storage.CorrelationStore,
	opts Options,
) *Aggregator {
	if opts.NewsWindowDays <= 0 {
		opts.NewsWindowDays = DefaultNewsWindowDays
	}
	if opts.PriceBars < 2 {
		opts.PriceBars = DefaultPriceBars
	}
	if opts.CorrelationHistory <= 0 {
		opts.CorrelationHistory = DefaultCorrelationHistory
	}
	if opts.RecentNews <= 0 {
		opts.RecentNews = DefaultRecentNews
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Aggregator{
		prices:       prices,
		news:         news,
		correlations: correlations,
		opts:         opts,
	}
}

// Analyze builds the snapshot of a sector over its fixed roster.
// Returns catalog.ErrUnknownSector for a name outside the enumeration.
// Store failures for one symbol are logged and leave that symbol at zero values.
func (a *Aggregator) Analyze(ctx context.Context, sectorName string) (*domain.SectorSnapshot, error) {
	roster, err := catalog.Roster(sectorName)
	if err != nil {
		return nil, err
	}

	now := a.opts.Now().UTC()
	analyses := make([]domain.SymbolAnalysis, 0, len(roster))
	for _, symbol := range roster {
		analyses = append(analyses, a.analyzeSymbol(ctx, symbol, now))
	}

	snapshot := Reduce(sectorName, analyses)
	snapshot.GeneratedAt = now
	snapshot.NewsWindowDays = a.opts.NewsWindowDays

	observability.RecordSnapshot(sectorName)
	return snapshot, nil
}

func (a *Aggregator) analyzeSymbol(ctx context.Context, symbol string, now time.Time) domain.SymbolAnalysis {
	result := domain.SymbolAnalysis{
		Symbol:     symbol,
		RecentNews: []domain.RecentNews{},
	}

	bars, err := a.prices.GetLatest(ctx, symbol, a.opts.PriceBars)
	if err != nil {
		a.opts.Logger.Printf("WARN load prices for %s: %v", symbol, err)
	} else if len(bars) > 0 {
		// GetLatest returns newest first.
		result.LatestPrice = bars[0].Close
		result.PriceChange5D = normalization.PercentChange(bars)
	}

	// The window starts at midnight UTC of the first day.
	since := domain.DateOf(now).AddDate(0, 0, -a.opts.NewsWindowDays)
	items, err := a.news.GetSince(ctx, symbol, since)
	if err != nil {
		a.opts.Logger.Printf("WARN load news for %s: %v", symbol, err)
	} else {
		normalization.SortNewsByRecency(items)
		result.NewsCount = len(items)
		result.AvgSentiment, result.AvgImpact = normalization.MeanScores(items)
		for i := 0; i < len(items) && i < a.opts.RecentNews; i++ {
			n := items[i]
			result.RecentNews = append(result.RecentNews, domain.RecentNews{
				Headline:       n.Headline,
				Source:         n.Source,
				URL:            n.URL,
				SentimentScore: n.SentimentScore,
				ImpactScore:    n.ImpactScore,
				PublishedAt:    n.PublishedAt,
			})
		}
	}

	rows, err := a.correlations.GetLatest(ctx, symbol, a.opts.CorrelationHistory)
	if err != nil {
		a.opts.Logger.Printf("WARN load correlations for %s: %v", symbol, err)
	} else if len(rows) > 0 {
		var sum float64
		for _, r := range rows {
			sum += r.CorrelationStrength
		}
		result.CorrelationStrength = sum / float64(len(rows))
	}

	return result
}

// Reduce combines per-symbol analyses, given in canonical roster order, into a snapshot.
//
// Sector sentiment and impact are unweighted means over every analysis, including
// symbols without news. MostActiveSymbol is the first symbol with the highest news
// count, nil when the sector has no news. MostVolatileSymbol is the first symbol
// with the highest |PriceChange5D| and is set whenever analyses is non-empty.
func Reduce(sectorName string, analyses []domain.SymbolAnalysis) *domain.SectorSnapshot {
	snapshot := &domain.SectorSnapshot{
		Sector:            sectorName,
		Symbols:           make([]string, 0, len(analyses)),
		PerSymbolAnalysis: make(map[string]domain.SymbolAnalysis, len(analyses)),
	}
	if len(analyses) == 0 {
		return snapshot
	}

	var sentimentSum, impactSum float64
	activeIdx, volatileIdx := 0, 0
	for i, sa := range analyses {
		if sa.RecentNews == nil {
			sa.RecentNews = []domain.RecentNews{}
		}
		snapshot.Symbols = append(snapshot.Symbols, sa.Symbol)
		snapshot.PerSymbolAnalysis[sa.Symbol] = sa
		snapshot.TotalNews += sa.NewsCount
		sentimentSum += sa.AvgSentiment
		impactSum += sa.AvgImpact

		if sa.NewsCount > analyses[activeIdx].NewsCount {
			activeIdx = i
		}
		if math.Abs(sa.PriceChange5D) > math.Abs(analyses[volatileIdx].PriceChange5D) {
			volatileIdx = i
		}
	}

	count := float64(len(analyses))
	snapshot.SectorSentiment = sentimentSum / count
	snapshot.SectorImpact = impactSum / count
	snapshot.MostVolatileSymbol = analyses[volatileIdx].Symbol
	if snapshot.TotalNews > 0 {
		active := analyses[activeIdx].Symbol
		snapshot.MostActiveSymbol = &active
	}
	return snapshot
}
