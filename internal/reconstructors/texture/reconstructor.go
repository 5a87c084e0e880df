// Package texture reconstructs single-plane images.
package texture

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/imaging"
	"github.com/custodia-labs/assetsync/internal/reconstructors/naming"
)

// Priority places textures after every container that may fold them.
const Priority = 40

// Ensure Reconstructor implements the interface.
var _ driven.Reconstructor = (*Reconstructor)(nil)

// Reconstructor persists decoded textures. When another texture of the group
// looks like its alpha mask, the two are merged into one image.
type Reconstructor struct{}

// New creates a texture reconstructor.
func New() *Reconstructor {
	return &Reconstructor{}
}

// TypeTag returns the type this reconstructor handles.
func (r *Reconstructor) TypeTag() domain.TypeTag {
	return domain.TypeTexture2D
}

// Priority returns the processing priority.
func (r *Reconstructor) Priority() int {
	return Priority
}

// Reconstruct emits the texture's image, or the image merged with its alpha partner.
func (r *Reconstructor) Reconstruct(_ context.Context, obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error) {
	id := obj.PathID()
	self, ok := readTexture(rc.Index, id)
	if !ok {
		return nil, fmt.Errorf("%w: texture %d has no pixels", domain.ErrReconstructionSkipped, id)
	}

	partner, ok := alphaPartner(rc, id, self.Name)
	if !ok {
		rc.Index.Materialize(id, self.Image)
		name := naming.Safe(self.Name, domain.TypeTexture2D, id)
		return []domain.Artifact{domain.NewImage(naming.Join(rc.Destination, name), self.Image, id)}, nil
	}

	base, baseID, alpha := self, id, partner.fields
	if len(partner.fields.Name) < len(self.Name) {
		base, baseID, alpha = partner.fields, partner.id, self
	}
	merged := imaging.MergeAlpha(base.Image, alpha.Image)
	rc.Index.Materialize(id, merged)
	rc.Index.Materialize(partner.id, merged)

	name := naming.Safe(base.Name, domain.TypeTexture2D, baseID)
	return []domain.Artifact{domain.NewImage(naming.Join(rc.Destination, name), merged, id, partner.id)}, nil
}

type candidate struct {
	id     int64
	fields domain.TextureFields
}

// alphaPartner finds the texture whose name contains, or is contained in, name.
// This is a naming heuristic: unrelated textures with overlapping names pair up too.
// The shortest partner name wins, then the lowest path id.
func alphaPartner(rc *driven.ReconstructContext, id int64, name string) (candidate, bool) {
	if name == "" {
		return candidate{}, false
	}

	var best candidate
	found := false
	for _, other := range rc.Index.IDsOfType(domain.TypeTexture2D) {
		if other == id || rc.Produced.Has(other) {
			continue
		}
		if e, ok := rc.Index.Lookup(other); !ok || e.State != domain.EntryUnprocessed {
			continue
		}
		tex, ok := readTexture(rc.Index, other)
		if !ok || !related(name, tex.Name) {
			continue
		}
		if !found || len(tex.Name) < len(best.fields.Name) {
			best = candidate{id: other, fields: tex}
			found = true
		}
	}
	return best, found
}

func related(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func readTexture(index *domain.PathIDIndex, id int64) (domain.TextureFields, bool) {
	f, err := index.Fields(id)
	if err != nil {
		return domain.TextureFields{}, false
	}
	tex, ok := f.(domain.TextureFields)
	if !ok || !hasPixels(tex.Image) {
		return domain.TextureFields{}, false
	}
	return tex, true
}

func hasPixels(img image.Image) bool {
	return img != nil && !img.Bounds().Empty()
}
