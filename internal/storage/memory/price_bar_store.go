package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// PriceBarStore is an in-memory implementation of storage.PriceBarStore.
type PriceBarStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceBar // keyed by (symbol, date)
}

// NewPriceBarStore creates a new in-memory price bar store.
func NewPriceBarStore() *PriceBarStore {
	return &PriceBarStore{
		data: make(map[string]*domain.PriceBar),
	}
}

// dayKey generates a unique key for a (symbol, date) row.
func dayKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%s", symbol, domain.DateOf(date).Format(time.DateOnly))
}

// UpsertBulk inserts or fully replaces bars keyed by (symbol, date).
// Validation failures reject the whole batch.
func (s *PriceBarStore) UpsertBulk(_ context.Context, bars []*domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bars {
		barCopy := *b
		barCopy.Date = domain.DateOf(b.Date)
		s.data[dayKey(b.Symbol, b.Date)] = &barCopy
	}
	return nil
}

// GetRange retrieves bars for a symbol within [start, end] (inclusive), ordered by date ASC.
func (s *PriceBarStore) GetRange(_ context.Context, symbol string, start, end time.Time) ([]*domain.PriceBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceBar
	for _, b := range s.data {
		if b.Symbol == symbol && !b.Date.Before(start) && !b.Date.After(end) {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetLatest retrieves up to limit most recent bars for a symbol, ordered by date DESC.
func (s *PriceBarStore) GetLatest(_ context.Context, symbol string, limit int) ([]*domain.PriceBar, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceBar
	for _, b := range s.data {
		if b.Symbol == symbol {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored bars.
func (s *PriceBarStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

var _ storage.PriceBarStore = (*PriceBarStore)(nil)
