package domain

import "time"

// DailyCorrelation joins one day's price change with that day's news signal.
// Corresponds to price_news_correlation table. Upsert on (symbol, date).
//
// CorrelationStrength is a same-day co-movement magnitude,
// |avg_sentiment * price_change_pct| / 100. It is not a Pearson or Spearman
// correlation coefficient.
type DailyCorrelation struct {
	Symbol              string
	Date                time.Time
	PriceChangePct      float64
	AvgSentiment        float64
	AvgImpact           float64
	NewsCount           int
	PositiveCount       int
	NegativeCount       int
	NeutralCount        int
	CorrelationStrength float64
}
