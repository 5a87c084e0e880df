package monobehaviour

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/reconstructors/fixture"
)

func behaviour(id int64, name string, tree any) *fixture.Object {
	return &fixture.Object{
		Tag:    domain.TypeMonoBehaviour,
		ID:     id,
		Fields: domain.DocumentFields{Name: name, Tree: tree},
	}
}

func TestReconstructor_Metadata(t *testing.T) {
	r := New()
	assert.Equal(t, domain.TypeMonoBehaviour, r.TypeTag())
	assert.Equal(t, Priority, r.Priority())
}

func TestReconstructor_WritesNormalisedDocument(t *testing.T) {
	obj := behaviour(3, "QuestTable", map[string]any{"dict": map[string]any{
		"rewards": []any{
			map[string]any{"key": "gold", "value": 100},
			map[string]any{"key": "xp", "value": 20},
		},
	}})

	arts, err := New().Reconstruct(context.Background(), obj, fixture.Context(obj))
	require.NoError(t, err)

	require.Len(t, arts, 1)
	assert.Equal(t, "out/QuestTable", arts[0].Path)
	assert.Equal(t, domain.ArtifactDocument, arts[0].Kind)
	assert.Equal(t, map[string]any{"rewards": map[string]any{"gold": 100, "xp": 20}}, arts[0].Document)
	assert.Equal(t, []int64{3}, arts[0].Sources)
}

func TestReconstructor_FallbackName(t *testing.T) {
	obj := behaviour(12, "", map[string]any{"a": 1})

	arts, err := New().Reconstruct(context.Background(), obj, fixture.Context(obj))
	require.NoError(t, err)

	assert.Equal(t, "out/MonoBehaviour_12", arts[0].Path)
}

func TestReconstructor_EmptyTreeIsSkipped(t *testing.T) {
	obj := behaviour(1, "empty", nil)

	_, err := New().Reconstruct(context.Background(), obj, fixture.Context(obj))

	assert.ErrorIs(t, err, domain.ErrReconstructionSkipped)
}

func TestReconstructor_ReadError(t *testing.T) {
	obj := &fixture.Object{Tag: domain.TypeMonoBehaviour, ID: 1, Err: errors.New("truncated")}

	_, err := New().Reconstruct(context.Background(), obj, fixture.Context(obj))

	assert.EqualError(t, err, "truncated")
}

func TestRead_WrongFields(t *testing.T) {
	obj := &fixture.Object{Tag: domain.TypeMonoBehaviour, ID: 1, Fields: domain.TextureFields{}}

	_, err := Read(fixture.Context(obj).Index, 1)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
