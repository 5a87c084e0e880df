package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// FetchOptions controls one fetch batch.
type FetchOptions struct {
	// Region labels cache index entries.
	Region string

	// Force re-downloads files already present in the cache.
	Force bool

	// Progress, when set, is called after each item. It may be called concurrently.
	Progress func(done, total int, item string)
}

// FetchReport is the outcome of a fetch batch.
type FetchReport struct {
	// Results holds one result per target, in target order.
	Results []domain.FetchResult

	// Groups maps a group key to the files successfully materialised for it.
	Groups map[string]*domain.ExtractionGroup
}

// GroupList returns the groups ordered by key.
func (r *FetchReport) GroupList() []*domain.ExtractionGroup {
	keys := make([]string, 0, len(r.Groups))
	for k := range r.Groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*domain.ExtractionGroup, len(keys))
	for i, k := range keys {
		out[i] = r.Groups[k]
	}
	return out
}

// FetchOrchestrator materialises content items in the local cache with a fixed-size worker pool.
type FetchOrchestrator struct {
	downloader driven.Downloader
	cache      driven.Cache
	writer     driven.ArtifactWriter
	cacheIndex driven.CacheIndexStore
	workers    int
	now        func() time.Time
}

// NewFetchOrchestrator creates a fetch orchestrator.
// cacheIndex is optional; when nil, digests of fetched files are not recorded.
func NewFetchOrchestrator(
	downloader driven.Downloader,
	cache driven.Cache,
	writer driven.ArtifactWriter,
	cacheIndex driven.CacheIndexStore,
	workers int,
) *FetchOrchestrator {
	if workers < 1 {
		workers = 1
	}
	return &FetchOrchestrator{
		downloader: downloader,
		cache:      cache,
		writer:     writer,
		cacheIndex: cacheIndex,
		workers:    workers,
		now:        time.Now,
	}
}

type fetchTask struct {
	index  int
	target domain.FetchTarget
}

// Fetch materialises every target. Each item succeeds or fails on its own: a
// failed item is logged and left out of the groups, siblings are unaffected.
func (o *FetchOrchestrator) Fetch(ctx context.Context, targets []domain.FetchTarget, opts FetchOptions) *FetchReport {
	results := make([]domain.FetchResult, len(targets))

	workers := o.workers
	if workers > len(targets) {
		workers = len(targets)
	}

	tasks := make(chan fetchTask)
	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				results[task.index] = o.fetchOne(ctx, task.target, opts)
				n := done.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), len(targets), task.target.Descriptor.LogicalName)
				}
			}
		}()
	}

	for i, t := range targets {
		tasks <- fetchTask{index: i, target: t}
	}
	close(tasks)
	wg.Wait()

	return &FetchReport{
		Results: results,
		Groups:  groupResults(targets, results),
	}
}

func (o *FetchOrchestrator) fetchOne(ctx context.Context, t domain.FetchTarget, opts FetchOptions) domain.FetchResult {
	d := t.Descriptor
	res := domain.FetchResult{
		LogicalName: d.LogicalName,
		ContentHash: d.ContentHash,
		Group:       t.Group,
		Status:      domain.FetchStatusSkippedPresent,
	}
	if d.Raw {
		res.Group = ""
	}

	if opts.Force || !o.cache.Exists(t.LocalPath) {
		n, err := o.download(ctx, t)
		if err != nil {
			res.Status = domain.FetchStatusFailed
			res.Err = fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, d.LogicalName, err)
			logger.Warn("fetch %s: %v", d.LogicalName, err)
			return res
		}
		res.Status = domain.FetchStatusFetched
		res.Bytes = n
		o.record(ctx, opts.Region, t)
	} else {
		logger.Debug("fetch %s: already present", d.LogicalName)
	}

	if d.Raw {
		if _, err := o.writer.CopyRaw(ctx, t.LocalPath, t.OutputPath); err != nil {
			res.Status = domain.FetchStatusFailed
			res.Err = fmt.Errorf("%w: %s: copy raw: %w", domain.ErrFetchFailed, d.LogicalName, err)
			logger.Warn("copy raw %s: %v", d.LogicalName, err)
			return res
		}
		res.Status = domain.FetchStatusRawCopied
	}
	return res
}

func (o *FetchOrchestrator) download(ctx context.Context, t domain.FetchTarget) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if t.Descriptor.URL == "" {
		return 0, fmt.Errorf("no download url")
	}
	logger.Debug("fetch %s <- %s", t.Descriptor.LogicalName, t.Descriptor.URL)
	return o.downloader.Download(ctx, t.Descriptor.URL, t.LocalPath)
}

// record stores the digest of a freshly fetched file. Failures only cost verification.
func (o *FetchOrchestrator) record(ctx context.Context, region string, t domain.FetchTarget) {
	if o.cacheIndex == nil {
		return
	}
	digest, err := o.cache.Digest(t.LocalPath)
	if err != nil {
		logger.Debug("digest %s: %v", t.LocalPath, err)
		return
	}
	entry := domain.CacheEntry{
		Region:      region,
		LogicalName: t.Descriptor.LogicalName,
		ContentHash: t.Descriptor.ContentHash,
		LocalPath:   t.LocalPath,
		Digest:      digest,
		FetchedAt:   o.now(),
	}
	if err := o.cacheIndex.Put(ctx, entry); err != nil {
		logger.Debug("record cache entry %s: %v", t.Descriptor.LogicalName, err)
	}
}

func groupResults(targets []domain.FetchTarget, results []domain.FetchResult) map[string]*domain.ExtractionGroup {
	groups := make(map[string]*domain.ExtractionGroup)
	for i, t := range targets {
		if t.Descriptor.Raw || results[i].Status == domain.FetchStatusFailed {
			continue
		}
		g, ok := groups[t.Group]
		if !ok {
			g = &domain.ExtractionGroup{Key: t.Group, Destination: t.Destination}
			groups[t.Group] = g
		}
		g.Files = append(g.Files, t.LocalPath)
		g.Members = append(g.Members, t.Descriptor.LogicalName)
	}
	for _, g := range groups {
		sort.Sort(byMember{g})
	}
	return groups
}

// byMember sorts a group by logical name, keeping Files aligned.
type byMember struct{ g *domain.ExtractionGroup }

func (b byMember) Len() int           { return len(b.g.Members) }
func (b byMember) Less(i, j int) bool { return b.g.Members[i] < b.g.Members[j] }
func (b byMember) Swap(i, j int) {
	b.g.Files[i], b.g.Files[j] = b.g.Files[j], b.g.Files[i]
	b.g.Members[i], b.g.Members[j] = b.g.Members[j], b.g.Members[i]
}
