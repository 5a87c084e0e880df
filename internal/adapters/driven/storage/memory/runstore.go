package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunRecord),
	}
}

// Save stores or replaces a run record.
func (s *RunStore) Save(_ context.Context, run domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// List returns the most recent runs first.
func (s *RunStore) List(_ context.Context, region string, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []domain.RunRecord
	for _, r := range s.runs {
		if region == "" || r.Region == region {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
