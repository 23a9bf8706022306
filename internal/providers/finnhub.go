package providers

import (
	"context"
	"net/url"
	"time"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/ratelimit"
)

// DefaultFinnhubURL is the public Finnhub REST endpoint.
const DefaultFinnhubURL = "https://finnhub.io/api/v1"

// Finnhub fetches headline records from the /company-news endpoint.
type Finnhub struct {
	baseClient
}

// NewFinnhub creates a Finnhub client.
func NewFinnhub(apiKey string, opts ...ClientOption) *Finnhub {
	return &Finnhub{baseClient: newBaseClient("finnhub", DefaultFinnhubURL, apiKey, opts)}
}

// Class returns the headline-news limiter class.
func (c *Finnhub) Class() ratelimit.Class { return ratelimit.ClassHeadline }

type finnhubNews struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

func (n finnhubNews) record() adapter.HeadlineArticle {
	return adapter.HeadlineArticle{
		Headline: n.Headline,
		Summary:  n.Summary,
		URL:      n.URL,
		Source:   n.Source,
		Datetime: n.Datetime,
	}
}

// FetchNews returns company news for symbol between from and to (by date).
func (c *Finnhub) FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]adapter.Record, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", dateParam(from))
	q.Set("to", dateParam(to))
	q.Set("token", c.apiKey)

	var items []finnhubNews
	if err := c.getJSON(ctx, "/company-news", q, &items); err != nil {
		return nil, err
	}

	records := make([]adapter.Record, 0, len(items))
	for _, item := range items {
		records = append(records, item.record())
	}
	return records, nil
}
