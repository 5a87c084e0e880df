// Package material reconstructs images that a material assembles from several
// texture slots, either split luma/chroma planes or a colour texture plus a
// separate alpha texture.
package material

import (
	"context"
	"fmt"
	"image"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/imaging"
	"github.com/custodia-labs/assetsync/internal/reconstructors/naming"
)

// Priority places materials before the textures they fold.
const Priority = 20

// Ensure Reconstructor implements the interface.
var _ driven.Reconstructor = (*Reconstructor)(nil)

// Reconstructor merges a material's texture slots into one image.
type Reconstructor struct {
	slots domain.MaterialSlots
}

// New creates a material reconstructor reading the given slot names.
func New(slots domain.MaterialSlots) *Reconstructor {
	return &Reconstructor{slots: slots}
}

// TypeTag returns the type this reconstructor handles.
func (r *Reconstructor) TypeTag() domain.TypeTag {
	return domain.TypeMaterial
}

// Priority returns the processing priority.
func (r *Reconstructor) Priority() int {
	return Priority
}

type resolved struct {
	id  int64
	img image.Image
}

// Reconstruct merges the material's planes. Every texture folded into the
// result has its index entry replaced by the merged image.
func (r *Reconstructor) Reconstruct(_ context.Context, obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error) {
	id := obj.PathID()
	f, err := rc.Index.Fields(id)
	if err != nil {
		return nil, err
	}
	mat, ok := f.(domain.MaterialFields)
	if !ok {
		return nil, fmt.Errorf("%w: material %d has %T fields", domain.ErrUnsupportedType, id, f)
	}

	resolve := func(slot string) (resolved, bool) {
		texID, ok := mat.Slot(slot)
		if !ok {
			return resolved{}, false
		}
		img, ok := rc.Index.Image(texID)
		if !ok || img.Bounds().Empty() {
			return resolved{}, false
		}
		return resolved{id: texID, img: img}, true
	}

	var merged image.Image
	var used []resolved

	y, okY := resolve(r.slots.Luma)
	cb, okCb := resolve(r.slots.ChromaBlue)
	cr, okCr := resolve(r.slots.ChromaRed)
	switch {
	case okY && okCb && okCr:
		used = []resolved{y, cb, cr}
		var alpha image.Image
		if a, ok := resolve(r.slots.Alpha); ok {
			alpha = a.img
			used = append(used, a)
		}
		merged = imaging.MergeYCbCr(y.img, cb.img, cr.img, alpha)

	default:
		main, ok := resolve(r.slots.Main)
		if !ok {
			return nil, fmt.Errorf("%w: material %d has no resolvable texture", domain.ErrReconstructionSkipped, id)
		}
		used = []resolved{main}
		merged = main.img
		if a, ok := resolve(r.slots.MainAlpha); ok && a.id != main.id {
			used = append(used, a)
			merged = imaging.MergeAlpha(main.img, a.img)
		}
	}

	sources := []int64{id}
	for _, u := range used {
		rc.Index.Materialize(u.id, merged)
		sources = append(sources, u.id)
	}

	name := naming.Safe(mat.Name, domain.TypeMaterial, id)
	return []domain.Artifact{domain.NewImage(naming.Join(rc.Destination, name), merged, sources...)}, nil
}
