// Package fixture builds decoded objects and reconstruct contexts for reconstructor tests.
package fixture

import (
	"image"
	"image/color"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Object is a decoded object with canned fields.
type Object struct {
	Tag    domain.TypeTag
	ID     int64
	Fields domain.Fields
	Err    error
}

// TypeTag returns the object's type.
func (o *Object) TypeTag() domain.TypeTag { return o.Tag }

// PathID returns the object's path id.
func (o *Object) PathID() int64 { return o.ID }

// Read returns the canned fields.
func (o *Object) Read() (domain.Fields, error) { return o.Fields, o.Err }

// Texture creates a Texture2D object.
func Texture(id int64, name string, img image.Image) *Object {
	return &Object{Tag: domain.TypeTexture2D, ID: id, Fields: domain.TextureFields{Name: name, Image: img}}
}

// Context indexes objects into a fresh reconstruct context for destination "out".
func Context(objs ...domain.DecodedObject) *driven.ReconstructContext {
	index := domain.NewPathIDIndex()
	for _, o := range objs {
		if err := index.Add(o); err != nil {
			panic(err)
		}
	}
	return &driven.ReconstructContext{
		Index:       index,
		Produced:    domain.NewProducedSet(),
		Destination: "out",
	}
}

// Fill creates a w×h image of one colour.
func Fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Gray creates a w×h single-channel plane of one value.
func Gray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Alpha creates a w×h alpha-only plane of one value.
func Alpha(w, h int, v uint8) *image.Alpha {
	img := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
