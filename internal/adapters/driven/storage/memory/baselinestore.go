package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure BaselineStore implements the interface.
var _ driven.BaselineStore = (*BaselineStore)(nil)

// BaselineStore is an in-memory implementation of driven.BaselineStore.
type BaselineStore struct {
	mu      sync.RWMutex
	regions map[string]map[string]domain.ContentDescriptor
}

// NewBaselineStore creates a new in-memory baseline store.
func NewBaselineStore() *BaselineStore {
	return &BaselineStore{
		regions: make(map[string]map[string]domain.ContentDescriptor),
	}
}

// Load returns the region's baseline ordered by logical name.
func (s *BaselineStore) Load(_ context.Context, region string) (*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.regions[region]
	if !ok {
		return nil, domain.ErrNotFound
	}

	list := make([]domain.ContentDescriptor, 0, len(entries))
	for _, d := range entries {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LogicalName < list[j].LogicalName })
	return domain.NewManifest(region, list), nil
}

// Apply upserts entries into the region's baseline.
func (s *BaselineStore) Apply(_ context.Context, region string, entries []domain.ContentDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.regions[region]
	if !ok {
		m = make(map[string]domain.ContentDescriptor)
		s.regions[region] = m
	}
	for _, d := range entries {
		m[d.LogicalName] = d
	}
	return nil
}

// Remove deletes logical names from the region's baseline.
func (s *BaselineStore) Remove(_ context.Context, region string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.regions[region]
	if !ok {
		return nil
	}
	for _, name := range names {
		delete(m, name)
	}
	return nil
}

// Reset deletes the region's baseline.
func (s *BaselineStore) Reset(_ context.Context, region string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regions, region)
	return nil
}
