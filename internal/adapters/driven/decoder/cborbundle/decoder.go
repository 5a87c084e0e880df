package cborbundle

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.AssetDecoder = (*Decoder)(nil)

// Decoder reads local bundle files.
type Decoder struct{}

// NewDecoder creates a bundle decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode returns every object contained in the files, in file order.
// Path ids must be unique across the files of one call.
func (d *Decoder) Decode(ctx context.Context, files []string) ([]domain.DecodedObject, error) {
	var objs []domain.DecodedObject
	seen := make(map[int64]string)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := readFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		for _, r := range records {
			if prev, ok := seen[r.PathID]; ok {
				return nil, fmt.Errorf("%w: path id %d in both %s and %s",
					domain.ErrInvalidInput, r.PathID, prev, file)
			}
			seen[r.PathID] = file
			objs = append(objs, &object{rec: r})
		}
	}
	return objs, nil
}

func readFile(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isZstd(data) {
		if data, err = zstdDecoder.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
	}

	var records []record
	if err := decMode.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: bundle: %v", domain.ErrInvalidInput, err)
	}
	for i, r := range records {
		if r.Type == "" {
			return nil, fmt.Errorf("%w: bundle record %d has no type", domain.ErrInvalidInput, i)
		}
	}
	return records, nil
}

// object is a decoded record whose fields are read on demand.
type object struct {
	rec record
}

func (o *object) TypeTag() domain.TypeTag {
	return domain.TypeTag(o.rec.Type)
}

func (o *object) PathID() int64 {
	return o.rec.PathID
}

func (o *object) Read() (domain.Fields, error) {
	switch o.TypeTag() {
	case domain.TypeTexture2D:
		var w textureWire
		if err := o.unmarshal(&w); err != nil {
			return nil, err
		}
		img, err := decodePixels(w)
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", o.rec.PathID, err)
		}
		return domain.TextureFields{Name: w.Name, Image: img}, nil

	case domain.TypeMonoBehaviour:
		var w documentWire
		if err := o.unmarshal(&w); err != nil {
			return nil, err
		}
		return domain.DocumentFields{Name: w.Name, Tree: w.Tree}, nil

	case domain.TypeMaterial:
		var w materialWire
		if err := o.unmarshal(&w); err != nil {
			return nil, err
		}
		slots := make([]domain.TextureSlot, len(w.Slots))
		for i, s := range w.Slots {
			slots[i] = domain.TextureSlot{Name: s.Name, PathID: s.PathID}
		}
		return domain.MaterialFields{Name: w.Name, Slots: slots}, nil

	case domain.TypeSprite:
		var w spriteWire
		if err := o.unmarshal(&w); err != nil {
			return nil, err
		}
		return spriteFields(w)

	case domain.TypeGameObject:
		var w gameObjectWire
		if err := o.unmarshal(&w); err != nil {
			return nil, err
		}
		return domain.GameObjectFields{
			Name:       w.Name,
			Parent:     w.Parent,
			Children:   w.Children,
			Components: w.Components,
		}, nil

	default:
		return nil, fmt.Errorf("%w: object type %s", domain.ErrUnsupportedType, o.rec.Type)
	}
}

func (o *object) unmarshal(v any) error {
	if len(o.rec.Fields) == 0 || bytes.Equal(o.rec.Fields, cborNull) {
		return fmt.Errorf("%w: %s %d has no fields", domain.ErrInvalidInput, o.rec.Type, o.rec.PathID)
	}
	if err := decMode.Unmarshal(o.rec.Fields, v); err != nil {
		return fmt.Errorf("%w: %s %d: %v", domain.ErrInvalidInput, o.rec.Type, o.rec.PathID, err)
	}
	return nil
}

// decodePixels turns a top-down pixel buffer into an image.
// Empty textures decode to a nil image.
func decodePixels(w textureWire) (image.Image, error) {
	bpp := w.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: pixel format %q", domain.ErrUnsupportedType, w.Format)
	}
	if w.Width < 0 || w.Height < 0 {
		return nil, fmt.Errorf("%w: size %dx%d", domain.ErrInvalidInput, w.Width, w.Height)
	}
	if w.Width == 0 || w.Height == 0 {
		return nil, nil
	}
	if want := w.Width * w.Height * bpp; len(w.Pixels) != want {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d",
			domain.ErrInvalidInput, w.Format, w.Width, w.Height, want, len(w.Pixels))
	}

	r := image.Rect(0, 0, w.Width, w.Height)
	switch w.Format {
	case FormatRGBA32:
		img := image.NewNRGBA(r)
		copy(img.Pix, w.Pixels)
		return img, nil
	case FormatRGB24:
		img := image.NewNRGBA(r)
		for i, j := 0, 0; i < len(w.Pixels); i, j = i+3, j+4 {
			img.Pix[j] = w.Pixels[i]
			img.Pix[j+1] = w.Pixels[i+1]
			img.Pix[j+2] = w.Pixels[i+2]
			img.Pix[j+3] = 0xff
		}
		return img, nil
	case FormatAlpha8:
		img := image.NewAlpha(r)
		copy(img.Pix, w.Pixels)
		return img, nil
	default: // FormatR8
		img := image.NewGray(r)
		copy(img.Pix, w.Pixels)
		return img, nil
	}
}

func spriteFields(w spriteWire) (domain.Fields, error) {
	rotation := domain.PackingRotation(w.Rotation)
	if rotation < domain.PackingRotationNone || rotation > domain.PackingRotationRotate90 {
		return nil, fmt.Errorf("%w: sprite rotation %d", domain.ErrInvalidInput, w.Rotation)
	}
	mode := domain.PackingMode(w.Mode)
	if mode != domain.PackingModeTight && mode != domain.PackingModeRectangle {
		return nil, fmt.Errorf("%w: sprite packing mode %d", domain.ErrInvalidInput, w.Mode)
	}

	var outline [][]domain.Point
	for _, poly := range w.Outline {
		outline = append(outline, points(poly))
	}
	return domain.SpriteFields{
		Name:    w.Name,
		Texture: w.Texture,
		Rect: domain.Rect{
			X:      w.Rect.X,
			Y:      w.Rect.Y,
			Width:  w.Rect.Width,
			Height: w.Rect.Height,
		},
		Packed:   w.Packed,
		Rotation: rotation,
		Mode:     mode,
		Outline:  outline,
		Vertices: points(w.Vertices),
		Indices:  w.Indices,
	}, nil
}

func points(in []pointWire) []domain.Point {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Point, len(in))
	for i, p := range in {
		out[i] = domain.Point{X: p.X, Y: p.Y}
	}
	return out
}
