// Package sprite reconstructs sprites cut out of atlas textures.
package sprite

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/imaging"
	"github.com/custodia-labs/assetsync/internal/reconstructors/naming"
)

// Priority places sprites last, after their atlas textures are materialised.
const Priority = 50

// Ensure Reconstructor implements the interface.
var _ driven.Reconstructor = (*Reconstructor)(nil)

// Reconstructor crops sprites out of their atlas and masks tightly packed ones.
type Reconstructor struct{}

// New creates a sprite reconstructor.
func New() *Reconstructor {
	return &Reconstructor{}
}

// TypeTag returns the type this reconstructor handles.
func (r *Reconstructor) TypeTag() domain.TypeTag {
	return domain.TypeSprite
}

// Priority returns the processing priority.
func (r *Reconstructor) Priority() int {
	return Priority
}

// Reconstruct emits the sprite image. The atlas must already be materialised.
func (r *Reconstructor) Reconstruct(_ context.Context, obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error) {
	id := obj.PathID()
	f, err := rc.Index.Fields(id)
	if err != nil {
		return nil, err
	}
	sp, ok := f.(domain.SpriteFields)
	if !ok {
		return nil, fmt.Errorf("%w: sprite %d has %T fields", domain.ErrUnsupportedType, id, f)
	}
	if sp.Texture == 0 {
		return nil, fmt.Errorf("%w: sprite %d has no atlas", domain.ErrReconstructionSkipped, id)
	}
	atlas, ok := rc.Index.MaterializedImage(sp.Texture)
	if !ok {
		return nil, fmt.Errorf("%w: sprite %d atlas %d not materialised", domain.ErrReconstructionSkipped, id, sp.Texture)
	}

	img, ok := Extract(atlas, sp)
	if !ok {
		return nil, fmt.Errorf("%w: sprite %d has an empty rect", domain.ErrReconstructionSkipped, id)
	}

	name := naming.Safe(sp.Name, domain.TypeSprite, id)
	return []domain.Artifact{domain.NewImage(naming.Join(rc.Destination, name), img, id)}, nil
}

// Extract cuts a sprite out of a top-down atlas image. The work happens in
// texture space, where row 0 is the bottom of the atlas.
func Extract(atlas image.Image, sp domain.SpriteFields) (*image.NRGBA, bool) {
	flipped := imaging.FlipVertical(atlas)

	rect := image.Rect(
		round(sp.Rect.X),
		round(sp.Rect.Y),
		round(sp.Rect.X+sp.Rect.Width),
		round(sp.Rect.Y+sp.Rect.Height),
	).Intersect(flipped.Bounds())
	if rect.Empty() {
		return nil, false
	}
	img := imaging.Crop(flipped, rect)

	if sp.Packed {
		img = unrotate(img, sp.Rotation)
	}

	if sp.Tight() {
		b := img.Bounds()
		mask := imaging.Mask(b.Dx(), b.Dy(), triangles(sp))
		img = imaging.ApplyMask(img, mask)
	}

	return imaging.FlipVertical(img), true
}

func unrotate(img *image.NRGBA, rot domain.PackingRotation) *image.NRGBA {
	switch rot {
	case domain.PackingRotationFlipHorizontal:
		return imaging.FlipVertical(img)
	case domain.PackingRotationFlipVertical:
		return imaging.FlipHorizontal(img)
	case domain.PackingRotationRotate180:
		return imaging.Rotate180(img)
	case domain.PackingRotationRotate90:
		return imaging.Rotate90CW(img)
	default:
		return img
	}
}

// triangles collects the outline fans and the mesh triangles of a sprite.
func triangles(sp domain.SpriteFields) []imaging.Triangle {
	var tris []imaging.Triangle
	for _, poly := range sp.Outline {
		pts := make([]imaging.Vec, len(poly))
		for i, p := range poly {
			pts[i] = imaging.Vec{X: p.X, Y: p.Y}
		}
		tris = append(tris, imaging.FanTriangles(pts)...)
	}

	for i := 0; i+2 < len(sp.Indices); i += 3 {
		var t imaging.Triangle
		valid := true
		for j := 0; j < 3; j++ {
			idx := sp.Indices[i+j]
			if idx < 0 || idx >= len(sp.Vertices) {
				valid = false
				break
			}
			t[j] = imaging.Vec{X: sp.Vertices[idx].X, Y: sp.Vertices[idx].Y}
		}
		if valid {
			tris = append(tris, t)
		}
	}
	return tris
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
