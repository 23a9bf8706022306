package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/catalog"
	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/ratelimit"
)

// RSS fetches generic articles from a fixed list of feeds and keeps the
// items that mention the requested company.
type RSS struct {
	feeds  []string
	parser *gofeed.Parser
}

// NewRSS creates an RSS source over feeds.
func NewRSS(feeds []string, client *http.Client) *RSS {
	parser := gofeed.NewParser()
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	parser.Client = client
	parser.UserAgent = "newslab/1.0"
	return &RSS{feeds: feeds, parser: parser}
}

// Name returns "rss".
func (r *RSS) Name() string { return "rss" }

// Class returns the generic-news limiter class.
func (r *RSS) Class() ratelimit.Class { return ratelimit.ClassGeneric }

// FetchNews parses every feed and returns matching items published within [from, to].
// Items without a publication date are kept. A failing feed fails the call
// only when no feed could be read.
func (r *RSS) FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]adapter.Record, error) {
	matcher := newMentionMatcher(symbol)

	var records []adapter.Record
	var lastErr error
	failed := 0
	for _, feedURL := range r.feeds {
		start := time.Now()
		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		observability.RecordProviderCall("rss", time.Since(start).Seconds(), err)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("rss: parse %s: %w", feedURL, err)
			continue
		}

		sourceName := feedSourceName(feed, feedURL)
		for _, item := range feed.Items {
			description := cleanHTML(item.Description)
			if !matcher.matches(item.Title + " " + description) {
				continue
			}

			var published time.Time
			if item.PublishedParsed != nil {
				published = item.PublishedParsed.UTC()
			} else if item.UpdatedParsed != nil {
				published = item.UpdatedParsed.UTC()
			}
			if !published.IsZero() && (published.Before(from) || published.After(to)) {
				continue
			}

			records = append(records, adapter.GenericArticle{
				Title:       item.Title,
				Description: description,
				URL:         item.Link,
				SourceName:  sourceName,
				PublishedAt: published,
			})
		}
	}

	if failed > 0 && failed == len(r.feeds) {
		return nil, lastErr
	}
	return records, nil
}

// feedSourceName prefers the feed link host so source weighting can match it.
func feedSourceName(feed *gofeed.Feed, feedURL string) string {
	for _, raw := range []string{feed.Link, feedURL} {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return strings.TrimPrefix(u.Host, "www.")
		}
	}
	return feed.Title
}

type mentionMatcher struct {
	symbol *regexp.Regexp
	name   *regexp.Regexp
}

var corporateSuffixes = map[string]bool{
	"inc": true, "corp": true, "co": true, "&": true, "group": true,
	"company": true, "corporation": true, "plc": true, "ltd": true,
}

// newMentionMatcher matches the ticker as an upper-case word and the company
// name stem as a case-insensitive word.
func newMentionMatcher(symbol string) mentionMatcher {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	m := mentionMatcher{}
	if len(symbol) >= 2 {
		m.symbol = regexp.MustCompile(`(^|[^A-Za-z0-9])\$?` + regexp.QuoteMeta(symbol) + `([^A-Za-z0-9]|$)`)
	}
	if company, ok := catalog.Company(symbol); ok {
		words := strings.Fields(strings.ToLower(company.Name))
		for len(words) > 1 && corporateSuffixes[strings.Trim(words[len(words)-1], ".,")] {
			words = words[:len(words)-1]
		}
		stem := strings.TrimSuffix(strings.Join(words, " "), ".com")
		if stem != "" {
			m.name = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(stem) + `\b`)
		}
	}
	return m
}

func (m mentionMatcher) matches(text string) bool {
	if m.symbol != nil && m.symbol.MatchString(text) {
		return true
	}
	return m.name != nil && m.name.MatchString(text)
}
