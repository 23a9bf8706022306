package reporting

import (
	"fmt"
	"strings"
	"time"

	"news-impact-lab/internal/domain"
)

// RenderMarkdown renders snapshots as a Markdown summary.
func RenderMarkdown(snapshots []*domain.SectorSnapshot) string {
	var sb strings.Builder

	sb.WriteString("# News Impact Report\n\n")
	if len(snapshots) > 0 {
		sb.WriteString(fmt.Sprintf("Generated: %s | News window: %d days\n\n",
			snapshots[0].GeneratedAt.UTC().Format(time.RFC3339), snapshots[0].NewsWindowDays))
	}

	// Overview
	sb.WriteString("## Sector Overview\n\n")
	sb.WriteString("| Sector | Sentiment | Impact | News | Most Active | Most Volatile |\n")
	sb.WriteString("|--------|-----------|--------|------|-------------|---------------|\n")
	for _, s := range snapshots {
		sb.WriteString(fmt.Sprintf("| %s | %.3f | %.3f | %d | %s | %s |\n",
			s.Sector, s.SectorSentiment, s.SectorImpact, s.TotalNews,
			orDash(s.MostActiveSymbol), s.MostVolatileSymbol))
	}
	sb.WriteString("\n")

	for _, s := range snapshots {
		sb.WriteString(fmt.Sprintf("## %s\n\n", s.Sector))
		sb.WriteString("| Symbol | Price | 5D Change % | Sentiment | Impact | News | Correlation |\n")
		sb.WriteString("|--------|-------|-------------|-----------|--------|------|-------------|\n")
		for _, symbol := range s.Symbols {
			a := s.PerSymbolAnalysis[symbol]
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.3f | %.3f | %d | %.4f |\n",
				symbol, a.LatestPrice, a.PriceChange5D, a.AvgSentiment, a.AvgImpact,
				a.NewsCount, a.CorrelationStrength))
		}
		sb.WriteString("\n")

		headlines := recentHeadlines(s)
		if len(headlines) > 0 {
			sb.WriteString("### Recent Headlines\n\n")
			for _, h := range headlines {
				sb.WriteString(h)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func recentHeadlines(s *domain.SectorSnapshot) []string {
	var out []string
	for _, symbol := range s.Symbols {
		for _, n := range s.PerSymbolAnalysis[symbol].RecentNews {
			out = append(out, fmt.Sprintf("- **%s** %s (%s, sentiment %.2f, impact %.2f)\n",
				symbol, escapeMarkdown(n.Headline), n.Source, n.SentimentScore, n.ImpactScore))
		}
	}
	return out
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
