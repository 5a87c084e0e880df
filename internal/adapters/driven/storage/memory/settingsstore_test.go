package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

func TestSettingsStore_Defaults(t *testing.T) {
	store := NewSettingsStore()

	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentFormatJSON, s.Output.DocumentFormat)
	assert.Equal(t, ":memory:", store.Path())
}

func TestSettingsStore_SaveAndLoad(t *testing.T) {
	store := NewSettingsStore()

	s := domain.DefaultSettings()
	s.Workers = 3
	require.NoError(t, store.Save(s))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Workers)
}
