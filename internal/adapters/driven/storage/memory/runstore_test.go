package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.RunRecord{ID: "r1", Region: "eu", StartedAt: base}))
	require.NoError(t, store.Save(ctx, domain.RunRecord{ID: "r2", Region: "eu", StartedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.RunRecord{ID: "r3", Region: "us", StartedAt: base.Add(2 * time.Hour)}))

	runs, err := store.List(ctx, "eu", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].ID)
	assert.Equal(t, "r1", runs[1].ID)

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ID)
}

func TestRunStore_ListLimit(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, domain.RunRecord{ID: id, Region: "eu", StartedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	runs, err := store.List(ctx, "eu", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
}

func TestRunStore_SaveReplaces(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunRecord{ID: "r1", Region: "eu", Artifacts: 1}))
	require.NoError(t, store.Save(ctx, domain.RunRecord{ID: "r1", Region: "eu", Artifacts: 5}))

	runs, err := store.List(ctx, "eu", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].Artifacts)
}
