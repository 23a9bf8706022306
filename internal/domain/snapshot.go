package domain

import "time"

// RecentNews is the trimmed view of a news item embedded in a snapshot.
type RecentNews struct {
	Headline       string    `json:"headline"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	SentimentScore float64   `json:"sentiment_score"`
	ImpactScore    float64   `json:"impact_score"`
	PublishedAt    time.Time `json:"published_at"`
}

// SymbolAnalysis is the per-symbol part of a sector snapshot.
type SymbolAnalysis struct {
	Symbol              string       `json:"symbol"`
	LatestPrice         float64      `json:"latest_price"`
	PriceChange5D       float64      `json:"price_change_5d"`
	AvgSentiment        float64      `json:"avg_sentiment"`
	AvgImpact           float64      `json:"avg_impact"`
	NewsCount           int          `json:"news_count"`
	RecentNews          []RecentNews `json:"recent_news"`
	CorrelationStrength float64      `json:"correlation_strength"`
}

// SectorSnapshot is a transient aggregate over a sector roster. Never persisted.
type SectorSnapshot struct {
	Sector             string                    `json:"sector"`
	Symbols            []string                  `json:"symbols"`
	PerSymbolAnalysis  map[string]SymbolAnalysis `json:"per_symbol_analysis"`
	SectorSentiment    float64                   `json:"sector_sentiment"`
	SectorImpact       float64                   `json:"sector_impact"`
	TotalNews          int                       `json:"total_news"`
	MostActiveSymbol   *string                   `json:"most_active_symbol"`
	MostVolatileSymbol string                    `json:"most_volatile_symbol"`
	GeneratedAt        time.Time                 `json:"generated_at"`
	NewsWindowDays     int                       `json:"window_days"`
}
