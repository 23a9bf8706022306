// Package providers implements HTTP clients for the external news and price
// providers. Each client decodes its wire format into adapter records or
// domain price bars; scoring and storage happen downstream.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news-impact-lab/internal/observability"
)

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 10 * time.Second

// ErrMissingAPIKey is returned by clients that require a key when none is configured.
var ErrMissingAPIKey = errors.New("providers: missing api key")

// HTTPError is a non-2xx provider response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// ClientOption configures a provider client.
type ClientOption func(*baseClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *baseClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *baseClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *baseClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

type baseClient struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

func newBaseClient(name, baseURL, apiKey string, opts []ClientOption) baseClient {
	c := baseClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Name returns the provider name used in logs and metrics.
func (c *baseClient) Name() string { return c.name }

// getJSON issues a GET to baseURL+path and decodes the JSON body into out.
func (c *baseClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordProviderCall(c.name, time.Since(start).Seconds(), err)
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "newslab/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http request: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Provider: c.name, StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

// cleanHTML strips markup from provider descriptions.
func cleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func dateParam(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
