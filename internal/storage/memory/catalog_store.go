package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// SectorStore is an in-memory implementation of storage.SectorStore.
type SectorStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Sector // keyed by name
}

// NewSectorStore creates a new in-memory sector store.
func NewSectorStore() *SectorStore {
	return &SectorStore{
		data: make(map[string]*domain.Sector),
	}
}

// Upsert inserts or replaces a sector keyed by name.
func (s *SectorStore) Upsert(_ context.Context, sector *domain.Sector) error {
	if sector == nil || sector.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sectorCopy := *sector
	s.data[sector.Name] = &sectorCopy
	return nil
}

// GetByName retrieves a sector. Returns ErrNotFound if not exists.
func (s *SectorStore) GetByName(_ context.Context, name string) (*domain.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sector, ok := s.data[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	sectorCopy := *sector
	return &sectorCopy, nil
}

// List returns all sectors ordered by name ASC.
func (s *SectorStore) List(_ context.Context) ([]*domain.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Sector, 0, len(s.data))
	for _, sector := range s.data {
		sectorCopy := *sector
		result = append(result, &sectorCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Count returns the number of stored sectors.
func (s *SectorStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

// CompanyStore is an in-memory implementation of storage.CompanyStore.
type CompanyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Company // keyed by symbol
}

// NewCompanyStore creates a new in-memory company store.
func NewCompanyStore() *CompanyStore {
	return &CompanyStore{
		data: make(map[string]*domain.Company),
	}
}

// Upsert inserts or replaces a company keyed by symbol.
func (s *CompanyStore) Upsert(_ context.Context, c *domain.Company) error {
	if c == nil || strings.TrimSpace(c.Symbol) == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	companyCopy := *c
	s.data[c.Symbol] = &companyCopy
	return nil
}

// GetBySymbol retrieves a company. Returns ErrNotFound if not exists.
func (s *CompanyStore) GetBySymbol(_ context.Context, symbol string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data[symbol]
	if !ok {
		return nil, storage.ErrNotFound
	}
	companyCopy := *c
	return &companyCopy, nil
}

// GetBySector retrieves all companies of a sector ordered by symbol ASC.
func (s *CompanyStore) GetBySector(_ context.Context, sector string) ([]*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Company
	for _, c := range s.data {
		if c.Sector == sector {
			companyCopy := *c
			result = append(result, &companyCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

// Count returns the number of stored companies.
func (s *CompanyStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data)), nil
}

var (
	_ storage.SectorStore  = (*SectorStore)(nil)
	_ storage.CompanyStore = (*CompanyStore)(nil)
)
