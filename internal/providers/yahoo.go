package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/ratelimit"
)

// DefaultYahooURL is the public Yahoo Finance chart endpoint.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// Yahoo fetches daily OHLCV bars from the v8 chart API.
type Yahoo struct {
	baseClient
}

// NewYahoo creates a Yahoo chart client. No API key is required.
func NewYahoo(opts ...ClientOption) *Yahoo {
	return &Yahoo{baseClient: newBaseClient("yahoo", DefaultYahooURL, "", opts)}
}

// Class returns the price limiter class.
func (c *Yahoo) Class() ratelimit.Class { return ratelimit.ClassPrice }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices returns daily bars for symbol within [from, to].
// Sessions with a missing close are skipped. AdjClose falls back to Close.
func (c *Yahoo) FetchPrices(ctx context.Context, symbol string, from, to time.Time) ([]*domain.PriceBar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q := url.Values{}
	q.Set("period1", fmt.Sprint(from.UTC().Unix()))
	q.Set("period2", fmt.Sprint(to.UTC().Add(24*time.Hour).Unix()))
	q.Set("interval", "1d")
	q.Set("events", "history")

	var resp yahooChartResponse
	if err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	fromDay, toDay := domain.DateOf(from), domain.DateOf(to)
	bars := make([]*domain.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := valueAt(quote.Close, i)
		if closePrice == nil {
			continue
		}
		day := domain.DateOf(time.Unix(ts, 0))
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}

		bar := &domain.PriceBar{
			Symbol:   symbol,
			Date:     day,
			Open:     deref(valueAt(quote.Open, i)),
			High:     deref(valueAt(quote.High, i)),
			Low:      deref(valueAt(quote.Low, i)),
			Close:    *closePrice,
			AdjClose: *closePrice,
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		if a := valueAt(adj, i); a != nil {
			bar.AdjClose = *a
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func valueAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
