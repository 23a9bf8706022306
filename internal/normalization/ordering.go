package normalization

import (
	"sort"

	"news-impact-lab/internal/domain"
)

// SortPriceBars orders bars by (symbol ASC, date ASC).
func SortPriceBars(bars []*domain.PriceBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return comparePriceBars(bars[i], bars[j]) < 0
	})
}

// SortNewsByRecency orders news by published_at DESC, then headline ASC.
func SortNewsByRecency(items []*domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Headline < b.Headline
	})
}

// comparePriceBars returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func comparePriceBars(a, b *domain.PriceBar) int {
	if a.Symbol != b.Symbol {
		if a.Symbol < b.Symbol {
			return -1
		}
		return 1
	}
	return a.Date.Compare(b.Date)
}
