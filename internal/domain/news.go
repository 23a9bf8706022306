package domain

import "time"

// NewsItem is a canonical, scored news article for one symbol.
// Corresponds to news_events table. Insert-or-ignore on DedupKey.
type NewsItem struct {
	ID             int64 // BIGSERIAL primary key, 0 until stored
	DedupKey       string
	Symbol         string
	Headline       string
	Summary        string
	Source         string
	URL            string
	SentimentScore float64 // [-1, 1]
	SentimentLabel string  // "positive" | "negative" | "neutral"
	ImpactScore    float64 // [0, 1]
	PublishedAt    time.Time
}

// Sentiment label constants
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Thresholds separating neutral from polarized sentiment.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// SentimentLabelFor classifies a polarity score.
func SentimentLabelFor(score float64) string {
	switch {
	case score > PositiveThreshold:
		return SentimentPositive
	case score < NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
