package ingestion

import (
	"context"
	"time"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/ratelimit"
)

// NewsSource provides provider-native article records for a symbol.
type NewsSource interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Class selects the rate limiter shared by providers of the same kind.
	Class() ratelimit.Class
	// FetchNews returns records published within [from, to]. Records may be
	// malformed; the adapter drops those.
	FetchNews(ctx context.Context, symbol string, from, to time.Time) ([]adapter.Record, error)
}

// PriceSource provides daily price bars for a symbol.
type PriceSource interface {
	Name() string
	Class() ratelimit.Class
	// FetchPrices returns bars with date in [from, to]. Bars may be unordered.
	FetchPrices(ctx context.Context, symbol string, from, to time.Time) ([]*domain.PriceBar, error)
}
