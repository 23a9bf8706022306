// Package sentiment assigns a bounded polarity to free text.
//
// Scorer is the pluggable contract. Safe wraps any Scorer and turns it into a
// total function: errors, panics and out-of-range results degrade to a neutral
// score instead of propagating.
package sentiment

import (
	"fmt"
	"log"
	"math"
	"strings"

	"news-impact-lab/internal/observability"
)

// Scorer computes a polarity for text. Implementations may return an error;
// callers go through Safe to obtain a bounded value.
type Scorer interface {
	Score(text string) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(text string) (float64, error)

// Score calls f(text).
func (f ScorerFunc) Score(text string) (float64, error) { return f(text) }

// positiveTerms / negativeTerms are lower-case phrases with their weights.
var positiveTerms = map[string]float64{
	"beat": 0.5, "beats": 0.5, "surge": 0.7, "soar": 0.7, "rally": 0.6,
	"record": 0.5, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"strong": 0.4, "gain": 0.4, "profit": 0.3, "approval": 0.5,
	"breakthrough": 0.6, "win": 0.4, "award": 0.4, "raises": 0.4,
	"bullish": 0.7, "expands": 0.3, "dividend": 0.3, "buyback": 0.3,
}

var negativeTerms = map[string]float64{
	"miss": 0.5, "misses": 0.5, "plunge": 0.7, "slump": 0.6, "crash": 0.8,
	"downgrade": 0.6, "underperform": 0.6, "weak": 0.4, "decline": 0.5,
	"loss": 0.4, "lawsuit": 0.5, "probe": 0.5, "investigation": 0.5,
	"fraud": 0.8, "recall": 0.5, "bankruptcy": 0.8, "layoffs": 0.5,
	"cuts": 0.3, "warning": 0.5, "bearish": 0.7, "delay": 0.4,
}

// LexiconScorer is a deterministic keyword-weight scorer.
// Score = (positive - negative) / (positive + negative) over matched phrases.
type LexiconScorer struct{}

// NewLexiconScorer creates a lexicon scorer.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

// Score returns the net polarity of text, 0 when no phrase matches.
func (LexiconScorer) Score(text string) (float64, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, nil
	}

	var pos, neg float64
	for term, w := range positiveTerms {
		if strings.Contains(lower, term) {
			pos += w
		}
	}
	for term, w := range negativeTerms {
		if strings.Contains(lower, term) {
			neg += w
		}
	}

	total := pos + neg
	if total == 0 {
		return 0, nil
	}
	return (pos - neg) / total, nil
}

// Safe makes a Scorer total.
type Safe struct {
	scorer Scorer
	logger *log.Logger
}

// NewSafe wraps scorer. A nil logger defaults to log.Default().
func NewSafe(scorer Scorer, logger *log.Logger) *Safe {
	if logger == nil {
		logger = log.Default()
	}
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	return &Safe{scorer: scorer, logger: logger}
}

// Score returns a polarity in [-1, 1]. Empty text is 0.
// Any scorer failure is logged as a warning and yields 0.
func (s *Safe) Score(text string) (score float64) {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("WARN sentiment scorer panicked: %v", r)
			observability.RecordScoringFallback()
			score = 0
		}
	}()

	v, err := s.scorer.Score(text)
	if err != nil {
		s.logger.Printf("WARN sentiment scoring failed: %v", err)
		observability.RecordScoringFallback()
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.logger.Printf("WARN sentiment scorer returned %s", fmt.Sprint(v))
		observability.RecordScoringFallback()
		return 0
	}
	return Clamp(v)
}

// Clamp bounds a polarity to [-1, 1]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
