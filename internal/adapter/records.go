// Package adapter maps provider-native article records into canonical news items.
//
// Provider payloads form a closed set of variants. Each provider client decodes
// its wire format into one of the Record types below; Adapter.Normalize applies
// the mapping policy of that variant.
package adapter

import "time"

// Kind identifies a record variant.
type Kind string

// Record kinds.
const (
	KindGeneric   Kind = "generic"
	KindPreScored Kind = "pre_scored"
	KindHeadline  Kind = "headline"
)

// Record is a provider-native article. Implemented only by the types in this package.
type Record interface {
	Kind() Kind
	isRecord()
}

// GenericArticle is a general news feed article (title + description).
// Sentiment is computed locally; source name is taken verbatim.
type GenericArticle struct {
	Title       string
	Description string
	URL         string
	SourceName  string
	PublishedAt time.Time
}

// PreScoredArticle comes from a specialized financial API that supplies
// its own sentiment polarity.
type PreScoredArticle struct {
	Title          string
	Summary        string
	URL            string
	Source         string
	SentimentScore float64
	PublishedAt    time.Time
}

// HeadlineArticle is a headline-first record with an epoch-seconds timestamp.
type HeadlineArticle struct {
	Headline string
	Summary  string
	URL      string
	Source   string
	Datetime int64 // unix seconds, 0 if absent
}

// Kind returns KindGeneric.
func (GenericArticle) Kind() Kind { return KindGeneric }

// Kind returns KindPreScored.
func (PreScoredArticle) Kind() Kind { return KindPreScored }

// Kind returns KindHeadline.
func (HeadlineArticle) Kind() Kind { return KindHeadline }

func (GenericArticle) isRecord()   {}
func (PreScoredArticle) isRecord() {}
func (HeadlineArticle) isRecord()  {}

// Envelope pairs a record with the symbol it was published for.
// Streaming sources deliver records this way.
type Envelope struct {
	Symbol string
	Record Record
}
