package reconstructors

import (
	"sort"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/reconstructors/gameobject"
	"github.com/custodia-labs/assetsync/internal/reconstructors/material"
	"github.com/custodia-labs/assetsync/internal/reconstructors/monobehaviour"
	"github.com/custodia-labs/assetsync/internal/reconstructors/sprite"
	"github.com/custodia-labs/assetsync/internal/reconstructors/texture"
)

// Ensure Registry implements the interface.
var _ driven.ReconstructorRegistry = (*Registry)(nil)

// Options configures the reconstructors.
type Options struct {
	// Material names the texture slots materials are assembled from.
	Material domain.MaterialSlots
}

// Registry dispatches type tags to the built-in reconstructors.
type Registry struct {
	gameObject    *gameobject.Reconstructor
	material      *material.Reconstructor
	monoBehaviour *monobehaviour.Reconstructor
	texture       *texture.Reconstructor
	sprite        *sprite.Reconstructor
}

// NewRegistry creates a registry with one reconstructor per known type tag.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		gameObject:    gameobject.New(),
		material:      material.New(opts.Material),
		monoBehaviour: monobehaviour.New(),
		texture:       texture.New(),
		sprite:        sprite.New(),
	}
}

// Lookup returns the reconstructor for a type tag.
func (r *Registry) Lookup(tag domain.TypeTag) (driven.Reconstructor, bool) {
	switch tag {
	case domain.TypeGameObject:
		return r.gameObject, true
	case domain.TypeMaterial:
		return r.material, true
	case domain.TypeMonoBehaviour:
		return r.monoBehaviour, true
	case domain.TypeTexture2D:
		return r.texture, true
	case domain.TypeSprite:
		return r.sprite, true
	default:
		return nil, false
	}
}

// Tags returns the known type tags in processing order.
func (r *Registry) Tags() []domain.TypeTag {
	tags := []domain.TypeTag{
		domain.TypeGameObject,
		domain.TypeMaterial,
		domain.TypeMonoBehaviour,
		domain.TypeTexture2D,
		domain.TypeSprite,
	}
	sort.SliceStable(tags, func(i, j int) bool {
		a, _ := r.Lookup(tags[i])
		b, _ := r.Lookup(tags[j])
		return a.Priority() < b.Priority()
	})
	return tags
}
