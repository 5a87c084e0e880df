package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure CacheIndexStore implements the interface.
var _ driven.CacheIndexStore = (*CacheIndexStore)(nil)

// CacheIndexStore is an in-memory implementation of driven.CacheIndexStore.
type CacheIndexStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]domain.CacheEntry
}

// NewCacheIndexStore creates a new in-memory cache index.
func NewCacheIndexStore() *CacheIndexStore {
	return &CacheIndexStore{
		entries: make(map[string]map[string]domain.CacheEntry),
	}
}

// Put stores or updates a cache entry.
func (s *CacheIndexStore) Put(_ context.Context, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.entries[entry.Region]
	if !ok {
		m = make(map[string]domain.CacheEntry)
		s.entries[entry.Region] = m
	}
	m[entry.LogicalName] = entry
	return nil
}

// List returns a region's entries ordered by logical name.
func (s *CacheIndexStore) List(_ context.Context, region string) ([]domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]domain.CacheEntry, 0, len(s.entries[region]))
	for _, e := range s.entries[region] {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LogicalName < list[j].LogicalName })
	return list, nil
}
