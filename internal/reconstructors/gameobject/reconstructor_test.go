package gameobject

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/reconstructors/fixture"
)

func container(id int64, name string, parent int64, children []int64, components ...int64) *fixture.Object {
	return &fixture.Object{
		Tag: domain.TypeGameObject,
		ID:  id,
		Fields: domain.GameObjectFields{
			Name:       name,
			Parent:     parent,
			Children:   children,
			Components: components,
		},
	}
}

func behaviour(id int64, tree any) *fixture.Object {
	return &fixture.Object{Tag: domain.TypeMonoBehaviour, ID: id, Fields: domain.DocumentFields{Name: "b", Tree: tree}}
}

func byPath(arts []domain.Artifact) map[string]domain.Artifact {
	m := make(map[string]domain.Artifact, len(arts))
	for _, a := range arts {
		m[a.Path] = a
	}
	return m
}

func TestReconstructor_Metadata(t *testing.T) {
	r := New()
	assert.Equal(t, domain.TypeGameObject, r.TypeTag())
	assert.Equal(t, Priority, r.Priority())
}

func TestReconstructor_Hierarchy(t *testing.T) {
	root := container(1, "Shop", 0, []int64{2, 3}, 10, 11)
	counter := container(2, "Counter", 1, nil, 12)
	shelf := container(3, "Shelf", 1, []int64{4})
	item := container(4, "Item", 3, nil, 13)
	rc := fixture.Context(root, counter, shelf, item,
		behaviour(10, map[string]any{"dict": map[string]any{"open": true}}),
		behaviour(11, map[string]any{"hours": 8}),
		behaviour(12, map[string]any{"cash": 5}),
		behaviour(13, map[string]any{"list": []any{map[string]any{"first": "sku", "second": 42}}}),
	)

	arts, err := New().Reconstruct(context.Background(), root, rc)
	require.NoError(t, err)

	docs := byPath(arts)
	require.Len(t, docs, 3)

	shop := docs["out/Shop"]
	assert.Equal(t, []any{map[string]any{"open": true}, map[string]any{"hours": 8}}, shop.Document)
	assert.ElementsMatch(t, []int64{1, 10, 11}, shop.Sources)

	assert.Equal(t, []any{map[string]any{"cash": 5}}, docs["out/Shop/Counter"].Document)
	assert.Equal(t, []any{map[string]any{"sku": 42}}, docs["out/Shop/Shelf/Item"].Document)

	for _, id := range []int64{2, 3, 4, 10, 11, 12, 13} {
		e, ok := rc.Index.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, domain.EntryConsumed, e.State, "path id %d", id)
	}
}

func TestReconstructor_NonRootIsSkipped(t *testing.T) {
	root := container(1, "Root", 0, []int64{2}, 10)
	child := container(2, "Child", 1, nil, 11)
	rc := fixture.Context(root, child, behaviour(10, 1), behaviour(11, 2))

	arts, err := New().Reconstruct(context.Background(), child, rc)

	assert.ErrorIs(t, err, domain.ErrReconstructionSkipped)
	assert.Empty(t, arts)
}

func TestReconstructor_ParentOutsideGroupIsRoot(t *testing.T) {
	orphan := container(2, "Orphan", 99, nil, 10)
	rc := fixture.Context(orphan, behaviour(10, map[string]any{"x": 1}))

	arts, err := New().Reconstruct(context.Background(), orphan, rc)
	require.NoError(t, err)

	require.Len(t, arts, 1)
	assert.Equal(t, "out/Orphan", arts[0].Path)
}

func TestReconstructor_ChildMissingFromParentListIsRoot(t *testing.T) {
	parent := container(1, "Parent", 0, []int64{2}, 10)
	listed := container(2, "Listed", 1, nil, 11)
	unlisted := container(3, "Unlisted", 1, nil, 12)
	rc := fixture.Context(parent, listed, unlisted,
		behaviour(10, map[string]any{"p": 1}),
		behaviour(11, map[string]any{"l": 2}),
		behaviour(12, map[string]any{"u": 3}),
	)

	arts, err := New().Reconstruct(context.Background(), parent, rc)
	require.NoError(t, err)
	docs := byPath(arts)
	assert.Len(t, docs, 2)
	assert.NotContains(t, docs, "out/Parent/Unlisted")

	e, ok := rc.Index.Lookup(3)
	require.True(t, ok)
	assert.NotEqual(t, domain.EntryConsumed, e.State)

	arts, err = New().Reconstruct(context.Background(), unlisted, rc)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "out/Unlisted", arts[0].Path)
	assert.Equal(t, []any{map[string]any{"u": 3}}, arts[0].Document)
}

func TestReconstructor_ThreeNodeCycleHasOneRoot(t *testing.T) {
	low := container(1, "Low", 3, []int64{2}, 10)
	loop := container(2, "Loop", 1, []int64{1, 3}, 11)
	hangingOff := container(3, "Hanging", 2, []int64{1}, 12)
	rc := fixture.Context(low, loop, hangingOff, behaviour(10, 1), behaviour(11, 2), behaviour(12, 3))

	for _, obj := range []*fixture.Object{loop, hangingOff} {
		_, err := New().Reconstruct(context.Background(), obj, rc)
		assert.ErrorIs(t, err, domain.ErrReconstructionSkipped, "path id %d", obj.ID)
	}

	arts, err := New().Reconstruct(context.Background(), low, rc)
	require.NoError(t, err)
	assert.Len(t, arts, 3)
}

func TestReconstructor_MissingComponentsAreAbsent(t *testing.T) {
	root := container(1, "Root", 0, nil, 10, 55, 12)
	rc := fixture.Context(root,
		behaviour(10, map[string]any{"a": 1}),
		fixture.Texture(12, "not a component", nil),
	)

	arts, err := New().Reconstruct(context.Background(), root, rc)
	require.NoError(t, err)

	assert.Equal(t, []any{map[string]any{"a": 1}}, arts[0].Document)
}

func TestReconstructor_CycleIsCut(t *testing.T) {
	a := container(1, "A", 2, []int64{2}, 10)
	b := container(2, "B", 1, []int64{1}, 11)
	rc := fixture.Context(a, b, behaviour(10, 1), behaviour(11, 2))

	_, err := New().Reconstruct(context.Background(), b, rc)
	assert.ErrorIs(t, err, domain.ErrReconstructionSkipped)

	arts, err := New().Reconstruct(context.Background(), a, rc)
	require.NoError(t, err)

	docs := byPath(arts)
	assert.Len(t, docs, 2)
	assert.Contains(t, docs, "out/A")
	assert.Contains(t, docs, "out/A/B")
}

func TestReconstructor_NoComponentsIsSkipped(t *testing.T) {
	root := container(1, "Empty", 0, []int64{2})
	child := container(2, "AlsoEmpty", 1, nil)
	rc := fixture.Context(root, child)

	_, err := New().Reconstruct(context.Background(), root, rc)

	assert.ErrorIs(t, err, domain.ErrReconstructionSkipped)
}

func TestReconstructor_DeepHierarchy(t *testing.T) {
	const depth = 2000
	objs := []domain.DecodedObject{}
	for i := int64(1); i <= depth; i++ {
		var children []int64
		if i < depth {
			children = []int64{i + 1}
		}
		objs = append(objs, container(i, "n", i-1, children, depth+i))
		objs = append(objs, behaviour(depth+i, map[string]any{"level": i}))
	}
	rc := fixture.Context(objs...)

	arts, err := New().Reconstruct(context.Background(), objs[0], rc)
	require.NoError(t, err)

	assert.Len(t, arts, depth)
}
