package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/ratelimit"
)

// DefaultNewsAPIURL is the public NewsAPI endpoint.
const DefaultNewsAPIURL = "https://newsapi.org"

// NewsAPIPageSize is the number of articles requested per symbol.
const NewsAPIPageSize = 20

// NewsAPI fetches generic articles from the /v2/everything endpoint.
type NewsAPI struct {
	baseClient
}

// NewNewsAPI creates a NewsAPI client.
func NewNewsAPI(apiKey string, opts ...ClientOption) *NewsAPI {
	return &NewsAPI{baseClient: newBaseClient("newsapi", DefaultNewsAPIURL, apiKey, opts)}
}

// Class returns the generic-news limiter class.
func (c *NewsAPI) Class() ratelimit.Class { return ratelimit.ClassGeneric }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchNews returns articles mentioning symbol published within [from, to].
func (c *NewsAPI) FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]adapter.Record, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s OR stock OR shares", symbol))
	q.Set("from", dateParam(from))
	q.Set("to", dateParam(to))
	q.Set("sortBy", "relevancy")
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprint(NewsAPIPageSize))
	q.Set("apiKey", c.apiKey)

	var resp newsAPIResponse
	if err := c.getJSON(ctx, "/v2/everything", q, &resp); err != nil {
		return nil, err
	}
	if strings.EqualFold(resp.Status, "error") {
		return nil, fmt.Errorf("newsapi: %s: %s", resp.Code, resp.Message)
	}

	records := make([]adapter.Record, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		var published time.Time
		if a.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				published = t.UTC()
			}
		}
		records = append(records, adapter.GenericArticle{
			Title:       a.Title,
			Description: cleanHTML(a.Description),
			URL:         a.URL,
			SourceName:  a.Source.Name,
			PublishedAt: published,
		})
	}
	return records, nil
}
