package normalization

import (
	"news-impact-lab/internal/domain"
)

// GeneratePriceChanges converts one symbol's daily bars into day-over-day changes.
// Bars are sorted by date first.
//
// Rules:
//   - the earliest bar has no previous close and produces no change
//   - a bar whose previous close is 0 produces no change
//   - change_pct = (close - prev_close) / prev_close * 100
func GeneratePriceChanges(bars []*domain.PriceBar) []*domain.PriceChange {
	if len(bars) < 2 {
		return nil
	}

	sorted := make([]*domain.PriceBar, 0, len(bars))
	for _, b := range bars {
		if b != nil {
			sorted = append(sorted, b)
		}
	}
	SortPriceBars(sorted)

	var result []*domain.PriceChange
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Close == 0 {
			continue
		}
		result = append(result, &domain.PriceChange{
			Symbol:    cur.Symbol,
			Date:      domain.DateOf(cur.Date),
			Close:     cur.Close,
			PrevClose: prev.Close,
			ChangePct: (cur.Close - prev.Close) / prev.Close * 100,
		})
	}
	return result
}

// PercentChange returns (latest - oldest) / oldest * 100 over bars.
// Returns 0 with fewer than 2 bars or when the oldest close is 0.
func PercentChange(bars []*domain.PriceBar) float64 {
	if len(bars) < 2 {
		return 0
	}
	sorted := make([]*domain.PriceBar, len(bars))
	copy(sorted, bars)
	SortPriceBars(sorted)

	oldest := sorted[0].Close
	latest := sorted[len(sorted)-1].Close
	if oldest == 0 {
		return 0
	}
	return (latest - oldest) / oldest * 100
}
