package texture

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/reconstructors/fixture"
)

func TestReconstructor_Metadata(t *testing.T) {
	r := New()
	assert.Equal(t, domain.TypeTexture2D, r.TypeTag())
	assert.Equal(t, Priority, r.Priority())
}

func TestReconstructor_PersistsUnmodified(t *testing.T) {
	img := fixture.Fill(4, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	obj := fixture.Texture(1, "hero", img)
	rc := fixture.Context(obj)

	arts, err := New().Reconstruct(context.Background(), obj, rc)
	require.NoError(t, err)

	require.Len(t, arts, 1)
	assert.Equal(t, "out/hero", arts[0].Path)
	assert.Equal(t, domain.ArtifactImage, arts[0].Kind)
	assert.Same(t, img, arts[0].Image)
	assert.Equal(t, []int64{1}, arts[0].Sources)

	got, ok := rc.Index.MaterializedImage(1)
	require.True(t, ok)
	assert.Same(t, img, got)
}

func TestReconstructor_NamelessTexture(t *testing.T) {
	obj := fixture.Texture(9, "", fixture.Fill(1, 1, color.NRGBA{A: 255}))

	arts, err := New().Reconstruct(context.Background(), obj, fixture.Context(obj))
	require.NoError(t, err)

	assert.Equal(t, "out/Texture2D_9", arts[0].Path)
}

func TestReconstructor_EmptyTextureIsSkipped(t *testing.T) {
	obj := fixture.Texture(1, "empty", image.NewNRGBA(image.Rect(0, 0, 0, 0)))

	arts, err := New().Reconstruct(context.Background(), obj, fixture.Context(obj))

	assert.ErrorIs(t, err, domain.ErrReconstructionSkipped)
	assert.Empty(t, arts)
}

func TestReconstructor_AlphaInference(t *testing.T) {
	base := fixture.Texture(1, "card", fixture.Fill(4, 4, color.NRGBA{R: 200, A: 255}))
	alpha := fixture.Texture(2, "card_alpha", fixture.Alpha(2, 2, 0x40))

	tests := []struct {
		name string
		run  *fixture.Object
	}{
		{name: "base first", run: base},
		{name: "alpha first", run: alpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := fixture.Context(base, alpha)

			arts, err := New().Reconstruct(context.Background(), tt.run, rc)
			require.NoError(t, err)

			require.Len(t, arts, 1)
			assert.Equal(t, "out/card", arts[0].Path)
			assert.ElementsMatch(t, []int64{1, 2}, arts[0].Sources)
			assert.Equal(t, image.Rect(0, 0, 4, 4), arts[0].Image.Bounds())
			c := color.NRGBAModel.Convert(arts[0].Image.At(3, 3)).(color.NRGBA)
			assert.Equal(t, uint8(200), c.R)
			assert.Equal(t, uint8(0x40), c.A)

			for _, id := range []int64{1, 2} {
				_, ok := rc.Index.MaterializedImage(id)
				assert.True(t, ok)
			}
		})
	}
}

func TestReconstructor_AlphaInferenceIgnoresProduced(t *testing.T) {
	base := fixture.Texture(1, "card", fixture.Fill(2, 2, color.NRGBA{A: 255}))
	alpha := fixture.Texture(2, "card_alpha", fixture.Alpha(2, 2, 0))
	rc := fixture.Context(base, alpha)
	rc.Produced.Add(2)

	arts, err := New().Reconstruct(context.Background(), base, rc)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, arts[0].Sources)
}

func TestReconstructor_AlphaInferencePrefersShortestPartner(t *testing.T) {
	base := fixture.Texture(1, "ui", fixture.Fill(2, 2, color.NRGBA{A: 255}))
	long := fixture.Texture(2, "ui_frame_alpha", fixture.Alpha(2, 2, 1))
	short := fixture.Texture(3, "ui_a", fixture.Alpha(2, 2, 2))
	rc := fixture.Context(base, long, short)

	arts, err := New().Reconstruct(context.Background(), base, rc)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 3}, arts[0].Sources)
}

func TestRelated(t *testing.T) {
	assert.True(t, related("icon", "icon_alpha"))
	assert.True(t, related("icon_alpha", "icon"))
	assert.False(t, related("icon", "icon"))
	assert.False(t, related("icon", "frame"))
	assert.False(t, related("", "frame"))
}
