package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// CorrelationStore is an in-memory implementation of storage.CorrelationStore.
type CorrelationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DailyCorrelation // keyed by (symbol, date)
}

// NewCorrelationStore creates a new in-memory correlation store.
func NewCorrelationStore() *CorrelationStore {
	return &CorrelationStore{
		data: make(map[string]*domain.DailyCorrelation),
	}
}

// UpsertBulk inserts or replaces rows keyed by (symbol, date).
func (s *CorrelationStore) UpsertBulk(_ context.Context, rows []*domain.DailyCorrelation) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r == nil || r.Symbol == "" || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		rowCopy := *r
		rowCopy.Date = domain.DateOf(r.Date)
		s.data[dayKey(r.Symbol, r.Date)] = &rowCopy
	}
	return nil
}

// GetLatest retrieves up to limit most recent rows for a symbol, ordered by date DESC.
func (s *CorrelationStore) GetLatest(_ context.Context, symbol string, limit int) ([]*domain.DailyCorrelation, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyCorrelation
	for _, r := range s.data {
		if r.Symbol == symbol {
			rowCopy := *r
			result = append(result, &rowCopy)
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

// GetRange retrieves rows for a symbol within [start, end] (inclusive), ordered by date ASC.
func (s *CorrelationStore) GetRange(_ context.Context, symbol string, start, end time.Time) ([]*domain.DailyCorrelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyCorrelation
	for _, r := range s.data {
		if r.Symbol == symbol && !r.Date.Before(start) && !r.Date.After(end) {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// Count returns the number of stored rows.
func (s *CorrelationStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

var _ storage.CorrelationStore = (*CorrelationStore)(nil)
