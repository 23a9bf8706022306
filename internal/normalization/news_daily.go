package normalization

import (
	"time"

	"news-impact-lab/internal/domain"
)

// DailyNews is the aggregated news signal of one symbol on one UTC date.
type DailyNews struct {
	Date          time.Time
	AvgSentiment  float64
	AvgImpact     float64
	Count         int
	PositiveCount int
	NegativeCount int
	NeutralCount  int
}

// AggregateNewsByDay groups news items by UTC publication date.
// The result is keyed by the date at UTC midnight.
func AggregateNewsByDay(items []*domain.NewsItem) map[time.Time]*DailyNews {
	result := make(map[time.Time]*DailyNews)
	sums := make(map[time.Time][2]float64)

	for _, n := range items {
		if n == nil {
			continue
		}
		day := domain.DateOf(n.PublishedAt)
		agg, ok := result[day]
		if !ok {
			agg = &DailyNews{Date: day}
			result[day] = agg
		}
		agg.Count++

		label := n.SentimentLabel
		if label == "" {
			label = domain.SentimentLabelFor(n.SentimentScore)
		}
		switch label {
		case domain.SentimentPositive:
			agg.PositiveCount++
		case domain.SentimentNegative:
			agg.NegativeCount++
		default:
			agg.NeutralCount++
		}

		s := sums[day]
		s[0] += n.SentimentScore
		s[1] += n.ImpactScore
		sums[day] = s
	}

	for day, agg := range result {
		s := sums[day]
		agg.AvgSentiment = s[0] / float64(agg.Count)
		agg.AvgImpact = s[1] / float64(agg.Count)
	}
	return result
}

// MeanScores returns the mean sentiment and impact of items, 0 when empty.
func MeanScores(items []*domain.NewsItem) (sentiment, impact float64) {
	if len(items) == 0 {
		return 0, 0
	}
	for _, n := range items {
		sentiment += n.SentimentScore
		impact += n.ImpactScore
	}
	count := float64(len(items))
	return sentiment / count, impact / count
}
