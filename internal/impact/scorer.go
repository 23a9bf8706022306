// Package impact scores the expected market salience of a news item.
package impact

import (
	"math"
	"net/url"
	"strings"
)

// Keywords is the fixed vocabulary of market-moving terms.
var Keywords = []string{
	"earnings", "revenue", "profit", "loss", "merger", "acquisition",
	"lawsuit", "regulation", "contract", "order", "guidance", "upgrade",
	"downgrade", "bankruptcy", "dividend", "split", "buyback", "ipo",
	"fda", "clinical", "trial", "patent", "breakthrough",
}

// Source weights for general news feeds, keyed by normalized domain.
var sourceWeights = map[string]float64{
	"reuters.com":      1.2,
	"bloomberg.com":    1.2,
	"wsj.com":          1.15,
	"cnbc.com":         1.1,
	"marketwatch.com":  1.05,
	"seekingalpha.com": 1.0,
	"yahoo.com":        0.9,
}

// Multiplier constants.
const (
	DefaultSourceWeight     = 0.8
	SpecializedSourceWeight = 1.1
	KeywordStep             = 0.1
)

// Input describes one article for impact scoring.
type Input struct {
	Title    string
	Summary  string
	Source   string  // provider source name or domain, general feeds only
	Polarity float64 // sentiment score in [-1, 1]

	// PreScoredAPI and HeadlineAPI mark specialized financial APIs.
	// Either flag replaces the source table lookup with SpecializedSourceWeight.
	PreScoredAPI bool
	HeadlineAPI  bool
}

// Score returns impact in [0, 1]:
// min(|polarity| * source_multiplier * keyword_multiplier, 1).
func Score(in Input) float64 {
	base := math.Abs(in.Polarity)
	if math.IsNaN(base) {
		return 0
	}
	if base > 1 {
		base = 1
	}

	impact := base * SourceMultiplier(in) * KeywordMultiplier(in.Title+" "+in.Summary)
	return math.Min(impact, 1.0)
}

// KeywordMultiplier returns 1 + 0.1 per distinct keyword found in text.
// Matching is case-insensitive substring presence.
func KeywordMultiplier(text string) float64 {
	lower := strings.ToLower(text)
	m := 1.0
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			m += KeywordStep
		}
	}
	return m
}

// SourceMultiplier returns the credibility weight for the article source.
func SourceMultiplier(in Input) float64 {
	if in.PreScoredAPI || in.HeadlineAPI {
		return SpecializedSourceWeight
	}
	return SourceWeight(in.Source)
}

// SourceWeight looks up a general feed source in the weight table.
// Unknown sources get DefaultSourceWeight.
func SourceWeight(source string) float64 {
	key := NormalizeSource(source)
	if w, ok := sourceWeights[key]; ok {
		return w
	}
	if !strings.Contains(key, ".") && key != "" {
		if w, ok := sourceWeights[key+".com"]; ok {
			return w
		}
	}
	return DefaultSourceWeight
}

// NormalizeSource lower-cases and trims a source name or URL down to a bare host.
func NormalizeSource(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, "/")
	return s
}
