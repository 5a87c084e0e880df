package cborbundle

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/imaging"
)

// Record is one object to encode into a bundle file.
type Record struct {
	Type   domain.TypeTag
	PathID int64
	Fields domain.Fields
}

// EncodeOptions controls bundle encoding.
type EncodeOptions struct {
	// Compress wraps the CBOR payload in a zstd frame.
	Compress bool
}

// Encode writes records in the bundle format.
func Encode(w io.Writer, records []Record, opts EncodeOptions) error {
	out := make([]record, len(records))
	for i, r := range records {
		wire, err := toWire(r.Fields)
		if err != nil {
			return fmt.Errorf("%s %d: %w", r.Type, r.PathID, err)
		}
		raw, err := encMode.Marshal(wire)
		if err != nil {
			return fmt.Errorf("%s %d: %w", r.Type, r.PathID, err)
		}
		out[i] = record{Type: string(r.Type), PathID: r.PathID, Fields: raw}
	}

	data, err := encMode.Marshal(out)
	if err != nil {
		return err
	}
	if opts.Compress {
		data = zstdEncoder.EncodeAll(data, nil)
	}
	_, err = w.Write(data)
	return err
}

// WriteFile encodes records into a new bundle file at path.
func WriteFile(path string, records []Record, opts EncodeOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, records, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toWire(f domain.Fields) (any, error) {
	switch v := f.(type) {
	case domain.TextureFields:
		return textureToWire(v), nil

	case domain.DocumentFields:
		return documentWire{Name: v.Name, Tree: v.Tree}, nil

	case domain.MaterialFields:
		slots := make([]slotWire, len(v.Slots))
		for i, s := range v.Slots {
			slots[i] = slotWire{Name: s.Name, PathID: s.PathID}
		}
		return materialWire{Name: v.Name, Slots: slots}, nil

	case domain.SpriteFields:
		var outline [][]pointWire
		for _, poly := range v.Outline {
			outline = append(outline, pointsToWire(poly))
		}
		return spriteWire{
			Name:     v.Name,
			Texture:  v.Texture,
			Rect:     rectWire{X: v.Rect.X, Y: v.Rect.Y, Width: v.Rect.Width, Height: v.Rect.Height},
			Packed:   v.Packed,
			Rotation: int(v.Rotation),
			Mode:     int(v.Mode),
			Outline:  outline,
			Vertices: pointsToWire(v.Vertices),
			Indices:  v.Indices,
		}, nil

	case domain.GameObjectFields:
		return gameObjectWire{
			Name:       v.Name,
			Parent:     v.Parent,
			Children:   v.Children,
			Components: v.Components,
		}, nil

	default:
		return nil, fmt.Errorf("%w: fields %T", domain.ErrUnsupportedType, f)
	}
}

// textureToWire stores single-channel images compactly and everything else as RGBA32.
func textureToWire(t domain.TextureFields) textureWire {
	w := textureWire{Name: t.Name, Format: FormatRGBA32}
	if t.Image == nil {
		return w
	}
	b := t.Image.Bounds()
	w.Width, w.Height = b.Dx(), b.Dy()

	switch t.Image.(type) {
	case *image.Alpha:
		w.Format = FormatAlpha8
		w.Pixels = packedRows(imaging.Plane(t.Image))
	case *image.Gray:
		w.Format = FormatR8
		w.Pixels = packedRows(imaging.Plane(t.Image))
	default:
		img := imaging.ToNRGBA(t.Image)
		w.Pixels = img.Pix
	}
	return w
}

func packedRows(p *image.Gray) []byte {
	w, h := p.Rect.Dx(), p.Rect.Dy()
	out := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		off := y * p.Stride
		out = append(out, p.Pix[off:off+w]...)
	}
	return out
}

func pointsToWire(in []domain.Point) []pointWire {
	if len(in) == 0 {
		return nil
	}
	out := make([]pointWire, len(in))
	for i, p := range in {
		out[i] = pointWire{X: p.X, Y: p.Y}
	}
	return out
}
