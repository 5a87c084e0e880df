package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// ExtractionCoordinator decodes extraction groups and dispatches their objects
// to reconstructors. Groups run concurrently; objects within a group run
// sequentially in priority order against the group's own index.
type ExtractionCoordinator struct {
	decoder  driven.AssetDecoder
	registry driven.ReconstructorRegistry
	writer   driven.ArtifactWriter
	workers  int
}

// NewExtractionCoordinator creates an extraction coordinator.
func NewExtractionCoordinator(
	decoder driven.AssetDecoder,
	registry driven.ReconstructorRegistry,
	writer driven.ArtifactWriter,
	workers int,
) *ExtractionCoordinator {
	if workers < 1 {
		workers = 1
	}
	return &ExtractionCoordinator{
		decoder:  decoder,
		registry: registry,
		writer:   writer,
		workers:  workers,
	}
}

// Extract processes every group and returns one result per group, in input order.
// A group that fails to decode is reported and does not affect the others.
func (c *ExtractionCoordinator) Extract(
	ctx context.Context,
	groups []*domain.ExtractionGroup,
	progress func(done, total int, item string),
) []domain.GroupResult {
	results := make([]domain.GroupResult, len(groups))

	var done atomic.Int64
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, group := range groups {
		g.Go(func() error {
			results[i] = c.extractGroup(ctx, *group)
			n := done.Add(1)
			if progress != nil {
				progress(int(n), len(groups), group.Key)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *ExtractionCoordinator) extractGroup(ctx context.Context, group domain.ExtractionGroup) domain.GroupResult {
	scope := logger.Scope("group " + group.Key)
	result := domain.GroupResult{
		Key:         group.Key,
		Destination: group.Destination,
		Status:      domain.GroupStatusReconstructed,
	}

	index, err := c.buildIndex(ctx, group)
	if err != nil {
		result.Status = domain.GroupStatusDecodeFailed
		result.Err = fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailed, group.Key, err)
		scope.Error("decode: %v", err)
		return result
	}
	scope.Debug("indexed %d objects from %d files", index.Len(), len(group.Files))

	order := c.processingOrder(index)
	rc := &driven.ReconstructContext{
		Index:       index,
		Produced:    domain.NewProducedSet(),
		Destination: group.Destination,
	}
	paths := make(map[artifactKey]bool)

	for _, obj := range order {
		id := obj.PathID()
		if rc.Produced.Has(id) {
			continue
		}
		if e, ok := index.Lookup(id); !ok || e.State == domain.EntryConsumed {
			continue
		}

		r, _ := c.registry.Lookup(obj.TypeTag())
		artifacts, err := r.Reconstruct(ctx, obj, rc)
		if err != nil {
			result.Skipped++
			if errors.Is(err, domain.ErrReconstructionSkipped) {
				scope.Debug("%s %d: %v", obj.TypeTag(), id, err)
			} else {
				scope.Warn("%s %d: %v", obj.TypeTag(), id, err)
			}
			continue
		}

		for _, a := range artifacts {
			rc.Produced.Add(a.Sources...)
			if p := uniquePath(paths, a, id); p != a.Path {
				scope.Warn("%s %d: %s already written in this group, using %s", obj.TypeTag(), id, a.Path, p)
				a.Path = p
			}
			if _, err := c.writer.Write(ctx, a); err != nil {
				scope.Warn("write %s: %v", a.Path, err)
				continue
			}
			result.Artifacts++
		}
		rc.Produced.Add(id)
	}

	scope.Info("%d artifacts, %d skipped", result.Artifacts, result.Skipped)
	return result
}

type artifactKey struct {
	kind domain.ArtifactKind
	path string
}

// uniquePath claims a path for a within one group. Objects sharing a name in the
// same destination would overwrite each other, so a repeat gets the path id of
// the artifact's primary source appended.
func uniquePath(used map[artifactKey]bool, a domain.Artifact, id int64) string {
	if len(a.Sources) > 0 {
		id = a.Sources[0]
	}
	p := a.Path
	for n := 0; used[artifactKey{a.Kind, p}]; n++ {
		p = fmt.Sprintf("%s_%d", a.Path, id)
		if n > 0 {
			p = fmt.Sprintf("%s_%d_%d", a.Path, id, n)
		}
	}
	used[artifactKey{a.Kind, p}] = true
	return p
}

// buildIndex decodes every file of the group at once and indexes the objects
// whose type has a reconstructor.
func (c *ExtractionCoordinator) buildIndex(ctx context.Context, group domain.ExtractionGroup) (*domain.PathIDIndex, error) {
	objs, err := c.decoder.Decode(ctx, group.Files)
	if err != nil {
		return nil, err
	}

	index := domain.NewPathIDIndex()
	for _, obj := range objs {
		if _, ok := c.registry.Lookup(obj.TypeTag()); !ok {
			continue
		}
		if err := index.Add(obj); err != nil {
			return nil, err
		}
	}
	return index, nil
}

// processingOrder snapshots the index before any mutation and sorts it by type
// priority, so containers run before the leaves they may consume.
func (c *ExtractionCoordinator) processingOrder(index *domain.PathIDIndex) []domain.DecodedObject {
	order := index.Snapshot()
	sort.SliceStable(order, func(i, j int) bool {
		return c.priority(order[i]) < c.priority(order[j])
	})
	return order
}

func (c *ExtractionCoordinator) priority(obj domain.DecodedObject) int {
	r, _ := c.registry.Lookup(obj.TypeTag())
	return r.Priority()
}
