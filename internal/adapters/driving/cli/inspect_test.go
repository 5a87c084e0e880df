package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

func TestDiffCmd_RequiresRegion(t *testing.T) {
	installServices(t, &Services{Inspector: &mockInspector{}})

	_, _, err := execute(t, "diff")

	assert.Error(t, err)
}

func TestDiffCmd_PrintsPlan(t *testing.T) {
	insp := &mockInspector{plan: &driving.Plan{
		Region:   "eu",
		Selected: 5,
		Changed: []domain.ContentDescriptor{
			{LogicalName: "ui/atlas", Size: 2048},
			{LogicalName: "audio/theme", Raw: true},
		},
		Removed: []string{"ui/old"},
	}}
	installServices(t, &Services{Inspector: insp})

	out, _, err := execute(t, "diff", "eu", "--full")

	require.NoError(t, err)
	assert.True(t, insp.lastFull)
	assert.Equal(t, "eu", insp.lastRegion)
	assert.Contains(t, out, "5 selected, 2 changed, 1 removed")
	assert.Contains(t, out, "ui/atlas")
	assert.Contains(t, out, "audio/theme")
	assert.Contains(t, out, "ui/old")
	assert.Contains(t, out, "Download size: 2.0 kB")
}

func TestDiffCmd_Error(t *testing.T) {
	installServices(t, &Services{Inspector: &mockInspector{err: domain.ErrNotFound}})

	_, _, err := execute(t, "diff", "nowhere")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyCmd_Clean(t *testing.T) {
	insp := &mockInspector{report: &driving.VerifyReport{Region: "eu", Checked: 3}}
	installServices(t, &Services{Inspector: insp})

	out, _, err := execute(t, "verify", "eu")

	require.NoError(t, err)
	assert.Contains(t, out, "Checked 3 cached file(s) for region eu: 3 ok")
}

func TestVerifyCmd_Corrupt(t *testing.T) {
	insp := &mockInspector{report: &driving.VerifyReport{
		Region:     "eu",
		Checked:    4,
		Missing:    []string{"ui/a"},
		Mismatched: []string{"ui/b"},
	}}
	installServices(t, &Services{Inspector: insp})

	out, _, err := execute(t, "verify", "eu")

	require.Error(t, err)
	assert.ErrorIs(t, err, errCacheCorrupt)
	assert.Contains(t, out, "ui/a")
	assert.Contains(t, out, "ui/b")
	assert.Contains(t, out, "2 ok")
}

func TestVerifyCmd_NotConfigured(t *testing.T) {
	installServices(t, nil)

	_, _, err := execute(t, "verify", "eu")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestRunsCmd_Empty(t *testing.T) {
	insp := &mockInspector{}
	installServices(t, &Services{Inspector: insp})

	out, _, err := execute(t, "runs")

	require.NoError(t, err)
	assert.Equal(t, "", insp.lastRegion)
	assert.Equal(t, 10, insp.lastLimit)
	assert.Contains(t, out, "No runs recorded.")
}

func TestRunsCmd_ListsRecords(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	insp := &mockInspector{records: []domain.RunRecord{{
		ID:           "run-1",
		Region:       "eu",
		StartedAt:    start,
		FinishedAt:   start.Add(2 * time.Second),
		Fetched:      7,
		Failed:       1,
		Artifacts:    12,
		BytesFetched: 3000,
	}}}
	installServices(t, &Services{Inspector: insp})

	out, _, err := execute(t, "runs", "eu", "--limit", "3")

	require.NoError(t, err)
	assert.Equal(t, "eu", insp.lastRegion)
	assert.Equal(t, 3, insp.lastLimit)
	assert.Contains(t, out, "7 fetched, 1 failed, 12 artifacts")
	assert.Contains(t, out, "3.0 kB in 2s")
	assert.Contains(t, out, "1 hour ago")
	assert.Contains(t, out, "run-1")
}
