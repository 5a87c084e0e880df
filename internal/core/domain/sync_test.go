package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_Record(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &RunSummary{
		ID:         "run-1",
		Region:     "en",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Fetches: []FetchResult{
			{LogicalName: "a", Status: FetchStatusFetched, Bytes: 10},
			{LogicalName: "b", Status: FetchStatusFetched, Bytes: 5},
			{LogicalName: "c", Status: FetchStatusSkippedPresent},
			{LogicalName: "d", Status: FetchStatusFailed},
			{LogicalName: "e", Status: FetchStatusRawCopied, Bytes: 1},
		},
		Groups: []GroupResult{
			{Key: "g1", Status: GroupStatusReconstructed, Artifacts: 3},
			{Key: "g2", Status: GroupStatusDecodeFailed},
		},
	}

	r := s.Record()

	assert.Equal(t, RunRecord{
		ID:           "run-1",
		Region:       "en",
		StartedAt:    start,
		FinishedAt:   start.Add(time.Minute),
		Fetched:      2,
		Skipped:      1,
		Failed:       1,
		RawCopied:    1,
		Groups:       2,
		DecodeFailed: 1,
		Artifacts:    3,
		BytesFetched: 16,
	}, r)
}

func TestArtifactConstructors(t *testing.T) {
	doc := NewDocument("icons/a", map[string]any{"k": 1}, 4, 5)
	assert.Equal(t, ArtifactDocument, doc.Kind)
	assert.Equal(t, []int64{4, 5}, doc.Sources)

	img := NewImage("icons/b", solid(1, 1), 6)
	assert.Equal(t, ArtifactImage, img.Kind)
	assert.Equal(t, "image", img.Kind.String())
	assert.Equal(t, "document", doc.Kind.String())
}
