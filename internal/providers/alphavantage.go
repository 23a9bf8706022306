package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/ratelimit"
)

// DefaultAlphaVantageURL is the public Alpha Vantage endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co"

const alphaVantageTimeLayout = "20060102T150405"

// AlphaVantage fetches pre-scored articles from the NEWS_SENTIMENT function.
type AlphaVantage struct {
	baseClient
}

// NewAlphaVantage creates an Alpha Vantage client.
func NewAlphaVantage(apiKey string, opts ...ClientOption) *AlphaVantage {
	return &AlphaVantage{baseClient: newBaseClient("alphavantage", DefaultAlphaVantageURL, apiKey, opts)}
}

// Class returns the pre-scored-news limiter class.
func (c *AlphaVantage) Class() ratelimit.Class { return ratelimit.ClassPreScored }

type alphaVantageResponse struct {
	// Quota and error responses come back with HTTP 200.
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
	Feed         []struct {
		Title                 string  `json:"title"`
		URL                   string  `json:"url"`
		TimePublished         string  `json:"time_published"`
		Summary               string  `json:"summary"`
		Source                string  `json:"source"`
		OverallSentimentScore float64 `json:"overall_sentiment_score"`
	} `json:"feed"`
}

// FetchNews returns scored articles for symbol published within [from, to].
func (c *AlphaVantage) FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]adapter.Record, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", symbol)
	q.Set("time_from", from.UTC().Format("20060102T1504"))
	q.Set("time_to", to.UTC().Format("20060102T1504"))
	q.Set("limit", "20")
	q.Set("apikey", c.apiKey)

	var resp alphaVantageResponse
	if err := c.getJSON(ctx, "/query", q, &resp); err != nil {
		return nil, err
	}
	switch {
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage: %s", resp.ErrorMessage)
	case resp.Note != "":
		return nil, fmt.Errorf("alphavantage: %s", resp.Note)
	case resp.Information != "" && len(resp.Feed) == 0:
		return nil, fmt.Errorf("alphavantage: %s", resp.Information)
	}

	records := make([]adapter.Record, 0, len(resp.Feed))
	for _, item := range resp.Feed {
		var published time.Time
		if t, err := time.Parse(alphaVantageTimeLayout, item.TimePublished); err == nil {
			published = t.UTC()
		}
		source := item.Source
		if source == "" {
			source = "Alpha Vantage"
		}
		records = append(records, adapter.PreScoredArticle{
			Title:          item.Title,
			Summary:        item.Summary,
			URL:            item.URL,
			Source:         source,
			SentimentScore: item.OverallSentimentScore,
			PublishedAt:    published,
		})
	}
	return records, nil
}
