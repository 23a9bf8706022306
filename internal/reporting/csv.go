package reporting

import (
	"fmt"
	"strings"

	"news-impact-lab/internal/domain"
)

// RenderCSV renders the per-symbol table of a snapshot as CSV, in roster order.
func RenderCSV(s *domain.SectorSnapshot) string {
	var sb strings.Builder

	sb.WriteString("sector,symbol,latest_price,price_change_5d,avg_sentiment,avg_impact,news_count,correlation_strength\n")
	for _, symbol := range s.Symbols {
		a := s.PerSymbolAnalysis[symbol]
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.6f,%.6f,%d,%.6f\n",
			s.Sector,
			symbol,
			a.LatestPrice,
			a.PriceChange5D,
			a.AvgSentiment,
			a.AvgImpact,
			a.NewsCount,
			a.CorrelationStrength,
		))
	}

	return sb.String()
}

// RenderCorrelationCSV renders correlation rows as CSV.
func RenderCorrelationCSV(rows []*domain.DailyCorrelation) string {
	var sb strings.Builder

	sb.WriteString("symbol,date,price_change_pct,avg_sentiment,avg_impact,news_count,")
	sb.WriteString("positive_count,negative_count,neutral_count,correlation_strength\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%d,%d,%d,%d,%.6f\n",
			r.Symbol,
			r.Date.UTC().Format("2006-01-02"),
			r.PriceChangePct,
			r.AvgSentiment,
			r.AvgImpact,
			r.NewsCount,
			r.PositiveCount,
			r.NegativeCount,
			r.NeutralCount,
			r.CorrelationStrength,
		))
	}

	return sb.String()
}
