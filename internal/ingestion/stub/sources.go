package stub

import (
	"context"
	"sync"
	"time"

	"news-impact-lab/internal/adapter"
	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/ratelimit"
)

// StubNewsSource returns fixed in-memory records per symbol.
// Implements ingestion.NewsSource interface.
type StubNewsSource struct {
	name    string
	class   ratelimit.Class
	records map[string][]adapter.Record
	errs    map[string]error
	delay   time.Duration

	mu    sync.Mutex
	calls map[string]int
}

// NewStubNewsSource creates a stub news source with the given records keyed by symbol.
func NewStubNewsSource(name string, class ratelimit.Class, records map[string][]adapter.Record) *StubNewsSource {
	return &StubNewsSource{
		name:    name,
		class:   class,
		records: records,
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// WithError makes FetchNews fail for symbol.
func (s *StubNewsSource) WithError(symbol string, err error) *StubNewsSource {
	s.errs[symbol] = err
	return s
}

// WithDelay makes every FetchNews block for d or until ctx is done.
func (s *StubNewsSource) WithDelay(d time.Duration) *StubNewsSource {
	s.delay = d
	return s
}

// Name returns the configured provider name.
func (s *StubNewsSource) Name() string { return s.name }

// Class returns the configured limiter class.
func (s *StubNewsSource) Class() ratelimit.Class { return s.class }

// FetchNews returns the records of symbol. The time range is ignored.
func (s *StubNewsSource) FetchNews(ctx context.Context, symbol string, _, _ time.Time) ([]adapter.Record, error) {
	s.mu.Lock()
	s.calls[symbol]++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if err := s.errs[symbol]; err != nil {
		return nil, err
	}
	recs := s.records[symbol]
	out := make([]adapter.Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Calls returns how many times symbol was fetched.
func (s *StubNewsSource) Calls(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

// StubPriceSource returns fixed in-memory bars filtered by symbol and date range.
// Implements ingestion.PriceSource interface.
type StubPriceSource struct {
	name string
	bars []*domain.PriceBar
	errs map[string]error
}

// NewStubPriceSource creates a stub price source.
func NewStubPriceSource(name string, bars []*domain.PriceBar) *StubPriceSource {
	return &StubPriceSource{name: name, bars: bars, errs: make(map[string]error)}
}

// WithError makes FetchPrices fail for symbol.
func (s *StubPriceSource) WithError(symbol string, err error) *StubPriceSource {
	s.errs[symbol] = err
	return s
}

// Name returns the configured provider name.
func (s *StubPriceSource) Name() string { return s.name }

// Class returns ratelimit.ClassPrice.
func (s *StubPriceSource) Class() ratelimit.Class { return ratelimit.ClassPrice }

// FetchPrices returns copies of the bars of symbol with date in [from, to].
func (s *StubPriceSource) FetchPrices(_ context.Context, symbol string, from, to time.Time) ([]*domain.PriceBar, error) {
	if err := s.errs[symbol]; err != nil {
		return nil, err
	}
	from, to = domain.DateOf(from), domain.DateOf(to)
	var result []*domain.PriceBar
	for _, bar := range s.bars {
		if bar.Symbol == symbol && !bar.Date.Before(from) && !bar.Date.After(to) {
			copy := *bar
			result = append(result, &copy)
		}
	}
	return result, nil
}
