package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// NewsStore is an in-memory implementation of storage.NewsStore.
type NewsStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.NewsItem // keyed by dedup_key
	nextID int64
}

// NewNewsStore creates a new in-memory news store.
func NewNewsStore() *NewsStore {
	return &NewsStore{
		data: make(map[string]*domain.NewsItem),
	}
}

// InsertIgnore inserts an item unless its dedup key exists.
func (s *NewsStore) InsertIgnore(_ context.Context, n *domain.NewsItem) (bool, error) {
	if err := validateNews(n); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(n), nil
}

// InsertIgnoreBulk inserts items, skipping existing keys (including intra-batch repeats).
func (s *NewsStore) InsertIgnoreBulk(_ context.Context, items []*domain.NewsItem) (int, error) {
	for _, n := range items {
		if err := validateNews(n); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, n := range items {
		if s.insertLocked(n) {
			inserted++
		}
	}
	return inserted, nil
}

func (s *NewsStore) insertLocked(n *domain.NewsItem) bool {
	if _, exists := s.data[n.DedupKey]; exists {
		return false
	}
	s.nextID++
	itemCopy := *n
	itemCopy.ID = s.nextID
	s.data[n.DedupKey] = &itemCopy
	n.ID = itemCopy.ID
	return true
}

// GetSince retrieves items with published_at >= since, ordered by published_at DESC.
func (s *NewsStore) GetSince(_ context.Context, symbol string, since time.Time) ([]*domain.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NewsItem
	for _, n := range s.data {
		if n.Symbol == symbol && !n.PublishedAt.Before(since) {
			itemCopy := *n
			result = append(result, &itemCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].PublishedAt.Equal(result[j].PublishedAt) {
			return result[i].PublishedAt.After(result[j].PublishedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// GetRange retrieves items with published_at in [start, end), ordered by published_at ASC.
func (s *NewsStore) GetRange(_ context.Context, symbol string, start, end time.Time) ([]*domain.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NewsItem
	for _, n := range s.data {
		if n.Symbol == symbol && !n.PublishedAt.Before(start) && n.PublishedAt.Before(end) {
			itemCopy := *n
			result = append(result, &itemCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].PublishedAt.Equal(result[j].PublishedAt) {
			return result[i].PublishedAt.Before(result[j].PublishedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Count returns the number of stored items.
func (s *NewsStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

func validateNews(n *domain.NewsItem) error {
	if n == nil || n.Symbol == "" || n.DedupKey == "" || n.Headline == "" {
		return storage.ErrInvalidInput
	}
	return nil
}

var _ storage.NewsStore = (*NewsStore)(nil)
