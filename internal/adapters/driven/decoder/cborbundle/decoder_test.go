package cborbundle

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

func writeBundle(t *testing.T, dir, name string, records []Record, opts EncodeOptions) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, WriteFile(path, records, opts))
	return path
}

// writeRaw writes records whose fields are given in wire form.
func writeRaw(t *testing.T, dir, name string, recs []record) string {
	t.Helper()
	data, err := encMode.Marshal(recs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func rawFields(t *testing.T, v any) []byte {
	t.Helper()
	data, err := encMode.Marshal(v)
	require.NoError(t, err)
	return data
}

func readAll(t *testing.T, objs []domain.DecodedObject) map[int64]domain.Fields {
	t.Helper()
	out := make(map[int64]domain.Fields, len(objs))
	for _, o := range objs {
		f, err := o.Read()
		require.NoError(t, err, "path id %d", o.PathID())
		out[o.PathID()] = f
	}
	return out
}

func sampleRecords() []Record {
	rgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	rgba.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	alpha := image.NewAlpha(image.Rect(0, 0, 3, 1))
	alpha.SetAlpha(2, 0, color.Alpha{A: 99})

	return []Record{
		{Type: domain.TypeTexture2D, PathID: 1, Fields: domain.TextureFields{Name: "icon", Image: rgba}},
		{Type: domain.TypeTexture2D, PathID: 2, Fields: domain.TextureFields{Name: "icon_alpha", Image: alpha}},
		{Type: domain.TypeMaterial, PathID: 3, Fields: domain.MaterialFields{
			Name:  "mat",
			Slots: []domain.TextureSlot{{Name: "_MainTex", PathID: 1}, {Name: "_AlphaTex", PathID: 2}},
		}},
		{Type: domain.TypeSprite, PathID: 4, Fields: domain.SpriteFields{
			Name:     "spr",
			Texture:  1,
			Rect:     domain.Rect{X: 0, Y: 0, Width: 2, Height: 1.5},
			Packed:   true,
			Rotation: domain.PackingRotationRotate90,
			Mode:     domain.PackingModeTight,
			Outline:  [][]domain.Point{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}}},
			Vertices: []domain.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}},
			Indices:  []int{0, 1, 2},
		}},
		{Type: domain.TypeMonoBehaviour, PathID: 5, Fields: domain.DocumentFields{
			Name: "stats",
			Tree: map[string]any{"hp": uint64(10), "tags": []any{"a", "b"}},
		}},
		{Type: domain.TypeGameObject, PathID: 6, Fields: domain.GameObjectFields{
			Name:       "root",
			Children:   []int64{7},
			Components: []int64{5},
		}},
		{Type: domain.TypeGameObject, PathID: 7, Fields: domain.GameObjectFields{Name: "child", Parent: 6}},
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "zstd"
		}
		t.Run(name, func(t *testing.T) {
			path := writeBundle(t, t.TempDir(), "a.bundle", sampleRecords(), EncodeOptions{Compress: compress})

			if compress {
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(data, zstdMagic))
			}

			objs, err := NewDecoder().Decode(context.Background(), []string{path})
			require.NoError(t, err)
			require.Len(t, objs, 7)
			assert.Equal(t, domain.TypeTexture2D, objs[0].TypeTag())
			assert.Equal(t, domain.TypeGameObject, objs[6].TypeTag())

			fields := readAll(t, objs)

			tex := fields[1].(domain.TextureFields)
			assert.Equal(t, "icon", tex.Name)
			assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 40}, tex.Image.At(1, 0))

			alpha := fields[2].(domain.TextureFields)
			require.IsType(t, &image.Alpha{}, alpha.Image)
			assert.Equal(t, color.Alpha{A: 99}, alpha.Image.At(2, 0))

			mat := fields[3].(domain.MaterialFields)
			id, ok := mat.Slot("_AlphaTex")
			assert.True(t, ok)
			assert.Equal(t, int64(2), id)

			want := sampleRecords()[3].Fields.(domain.SpriteFields)
			assert.Equal(t, want, fields[4])

			doc := fields[5].(domain.DocumentFields)
			assert.Equal(t, "stats", doc.Name)
			assert.Equal(t, map[string]any{"hp": uint64(10), "tags": []any{"a", "b"}}, doc.Tree)

			assert.Equal(t, domain.GameObjectFields{Name: "root", Children: []int64{7}, Components: []int64{5}}, fields[6])
			assert.Equal(t, domain.GameObjectFields{Name: "child", Parent: 6}, fields[7])
		})
	}
}

func TestDecoder_SiblingFilesShareOneResult(t *testing.T) {
	dir := t.TempDir()
	a := writeBundle(t, dir, "a.bundle", sampleRecords()[:2], EncodeOptions{})
	b := writeBundle(t, dir, "b.bundle", sampleRecords()[2:4], EncodeOptions{Compress: true})

	objs, err := NewDecoder().Decode(context.Background(), []string{a, b})
	require.NoError(t, err)

	ids := make([]int64, len(objs))
	for i, o := range objs {
		ids[i] = o.PathID()
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestDecoder_DuplicatePathIDAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	recs := sampleRecords()[:1]
	a := writeBundle(t, dir, "a.bundle", recs, EncodeOptions{})
	b := writeBundle(t, dir, "b.bundle", recs, EncodeOptions{})

	_, err := NewDecoder().Decode(context.Background(), []string{a, b})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "path id 1")
}

func TestDecoder_FileErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.bundle")
	require.NoError(t, os.WriteFile(garbage, []byte("not cbor at all"), 0o600))
	untyped := writeRaw(t, dir, "untyped.bundle", []record{{PathID: 1}})

	tests := []struct {
		name string
		file string
		want error
	}{
		{name: "missing", file: filepath.Join(dir, "missing.bundle"), want: os.ErrNotExist},
		{name: "garbage", file: garbage, want: domain.ErrInvalidInput},
		{name: "record without type", file: untyped, want: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder().Decode(context.Background(), []string{tt.file})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecoder_CancelledContext(t *testing.T) {
	path := writeBundle(t, t.TempDir(), "a.bundle", sampleRecords(), EncodeOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder().Decode(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObject_ReadIsLazy(t *testing.T) {
	dir := t.TempDir()
	path := writeRaw(t, dir, "a.bundle", []record{
		{Type: "Texture2D", PathID: 1, Fields: rawFields(t, textureWire{
			Name: "broken", Width: 4, Height: 4, Format: FormatRGBA32, Pixels: []byte{1, 2, 3},
		})},
		{Type: "AudioClip", PathID: 2, Fields: rawFields(t, map[string]any{"name": "x"})},
		{Type: "Sprite", PathID: 3, Fields: rawFields(t, spriteWire{Name: "s", Rotation: 9})},
		{Type: "Material", PathID: 4},
	})

	// Broken fields do not fail the decode of the file.
	objs, err := NewDecoder().Decode(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, objs, 4)

	_, err = objs[0].Read()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = objs[1].Read()
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Equal(t, domain.TypeTag("AudioClip"), objs[1].TypeTag())

	_, err = objs[2].Read()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = objs[3].Read()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecodePixels(t *testing.T) {
	tests := []struct {
		name  string
		wire  textureWire
		check func(t *testing.T, img image.Image)
	}{
		{
			name: "RGB24 is opaque",
			wire: textureWire{Width: 2, Height: 1, Format: FormatRGB24, Pixels: []byte{1, 2, 3, 4, 5, 6}},
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 255}, img.At(1, 0))
			},
		},
		{
			name: "R8 is grey",
			wire: textureWire{Width: 1, Height: 2, Format: FormatR8, Pixels: []byte{7, 8}},
			check: func(t *testing.T, img image.Image) {
				require.IsType(t, &image.Gray{}, img)
				assert.Equal(t, color.Gray{Y: 8}, img.At(0, 1))
			},
		},
		{
			name: "rows are top down",
			wire: textureWire{Width: 1, Height: 2, Format: FormatRGBA32, Pixels: []byte{1, 1, 1, 1, 2, 2, 2, 2}},
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{R: 1, G: 1, B: 1, A: 1}, img.At(0, 0))
			},
		},
		{
			name: "empty texture",
			wire: textureWire{Width: 0, Height: 4, Format: FormatRGBA32},
			check: func(t *testing.T, img image.Image) {
				assert.Nil(t, img)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := decodePixels(tt.wire)
			require.NoError(t, err)
			tt.check(t, img)
		})
	}
}

func TestDecodePixels_Errors(t *testing.T) {
	_, err := decodePixels(textureWire{Width: 1, Height: 1, Format: "DXT5", Pixels: []byte{0}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = decodePixels(textureWire{Width: -1, Height: 1, Format: FormatR8})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = decodePixels(textureWire{Width: 2, Height: 2, Format: FormatRGB24, Pixels: make([]byte, 11)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEncode_UnsupportedFields(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []Record{{Type: "X", PathID: 1}}, EncodeOptions{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
