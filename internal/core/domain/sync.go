package domain

import "time"

// FetchTarget is one content item the fetch stage must materialise.
type FetchTarget struct {
	// Descriptor is the manifest entry.
	Descriptor ContentDescriptor

	// Destination is the slash separated destination folder.
	Destination string

	// Group is the flattened destination folder used as extraction group key.
	Group string

	// LocalPath is the cache file path.
	LocalPath string

	// OutputPath is the raw copy destination relative to the output root.
	// Only set for raw descriptors.
	OutputPath string
}

// FetchStatus is the outcome of fetching one item.
type FetchStatus string

// Fetch statuses.
const (
	FetchStatusFetched        FetchStatus = "fetched"
	FetchStatusSkippedPresent FetchStatus = "skipped-present"
	FetchStatusFailed         FetchStatus = "failed"
	FetchStatusRawCopied      FetchStatus = "raw-copied"
)

// FetchResult reports the outcome for one logical name.
type FetchResult struct {
	// LogicalName identifies the item.
	LogicalName string

	// ContentHash is the hash that was fetched.
	ContentHash string

	// Group is the extraction group the item belongs to ("" for raw items).
	Group string

	// Status is the outcome.
	Status FetchStatus

	// Bytes is the number of bytes transferred.
	Bytes int64

	// Err is set when Status is FetchStatusFailed.
	Err error
}

// ExtractionGroup is a destination plus the raw files decoded together.
// All references inside these files resolve against one shared index.
type ExtractionGroup struct {
	// Key is the flattened destination folder.
	Key string

	// Destination is the slash separated destination folder used for output.
	Destination string

	// Files lists local bundle file paths ordered by logical name.
	Files []string

	// Members lists the logical names of Files.
	Members []string
}

// GroupStatus is the outcome of decoding one group.
type GroupStatus string

// Group statuses.
const (
	GroupStatusReconstructed GroupStatus = "reconstructed"
	GroupStatusDecodeFailed  GroupStatus = "decode-failed"
)

// GroupResult reports the outcome for one extraction group.
type GroupResult struct {
	// Key identifies the group.
	Key string

	// Destination is the group's output folder.
	Destination string

	// Status is the outcome.
	Status GroupStatus

	// Artifacts is the number of artifacts written.
	Artifacts int

	// Skipped is the number of objects that yielded no artifact.
	Skipped int

	// Err is set when Status is GroupStatusDecodeFailed.
	Err error
}

// RunSummary is the outcome of one sync run for a region.
type RunSummary struct {
	// ID uniquely identifies the run.
	ID string

	// Region is the synced region.
	Region string

	// StartedAt is when the run started.
	StartedAt time.Time

	// FinishedAt is when the run finished.
	FinishedAt time.Time

	// Fetches reports per logical name outcomes.
	Fetches []FetchResult

	// Groups reports per group outcomes.
	Groups []GroupResult
}

// FetchCount returns the number of fetch results with a status.
func (s *RunSummary) FetchCount(status FetchStatus) int {
	n := 0
	for _, f := range s.Fetches {
		if f.Status == status {
			n++
		}
	}
	return n
}

// GroupCount returns the number of group results with a status.
func (s *RunSummary) GroupCount(status GroupStatus) int {
	n := 0
	for _, g := range s.Groups {
		if g.Status == status {
			n++
		}
	}
	return n
}

// ArtifactCount returns the total number of artifacts written.
func (s *RunSummary) ArtifactCount() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Artifacts
	}
	return n
}

// BytesFetched returns the total number of bytes transferred.
func (s *RunSummary) BytesFetched() int64 {
	var n int64
	for _, f := range s.Fetches {
		n += f.Bytes
	}
	return n
}

// RunRecord is the persisted form of a run summary.
type RunRecord struct {
	ID           string
	Region       string
	StartedAt    time.Time
	FinishedAt   time.Time
	Fetched      int
	Skipped      int
	Failed       int
	RawCopied    int
	Groups       int
	DecodeFailed int
	Artifacts    int
	BytesFetched int64
}

// Record converts a summary to its persisted form.
func (s *RunSummary) Record() RunRecord {
	return RunRecord{
		ID:           s.ID,
		Region:       s.Region,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		Fetched:      s.FetchCount(FetchStatusFetched),
		Skipped:      s.FetchCount(FetchStatusSkippedPresent),
		Failed:       s.FetchCount(FetchStatusFailed),
		RawCopied:    s.FetchCount(FetchStatusRawCopied),
		Groups:       len(s.Groups),
		DecodeFailed: s.GroupCount(GroupStatusDecodeFailed),
		Artifacts:    s.ArtifactCount(),
		BytesFetched: s.BytesFetched(),
	}
}

// CacheEntry records a content item materialised in the local cache.
type CacheEntry struct {
	Region      string
	LogicalName string
	ContentHash string
	LocalPath   string
	Digest      string
	FetchedAt   time.Time
}

// ProgressStage identifies which pipeline stage a progress event belongs to.
type ProgressStage string

// Progress stages.
const (
	StagePlan    ProgressStage = "plan"
	StageFetch   ProgressStage = "fetch"
	StageExtract ProgressStage = "extract"
	StageDone    ProgressStage = "done"
)

// ProgressEvent reports pipeline progress to an observer.
type ProgressEvent struct {
	// Region is the region being synced.
	Region string

	// Stage is the current stage.
	Stage ProgressStage

	// Done and Total count finished and planned units of the stage.
	Done  int
	Total int

	// Item names the unit that just finished.
	Item string
}
