package driven

import (
	"context"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// ReconstructContext is the group-scoped state a reconstructor works against.
// It is owned by the goroutine processing one extraction group.
type ReconstructContext struct {
	// Index resolves path ids within the group. Reconstructors may materialise
	// or consume entries they fold into their own artifact.
	Index *domain.PathIDIndex

	// Produced holds path ids already emitted or folded.
	Produced domain.ProducedSet

	// Destination is the group's output folder.
	Destination string
}

// Reconstructor turns one decoded object, plus whatever it references, into artifacts.
// Each reconstructor handles a single type tag.
type Reconstructor interface {
	// TypeTag returns the type this reconstructor handles.
	TypeTag() domain.TypeTag

	// Priority orders processing within a group (lower runs first).
	// Containers sort before the leaves they consume.
	Priority() int

	// Reconstruct produces artifacts. Every path id folded into an artifact must
	// appear in its Sources. Objects that yield nothing return an error wrapping
	// domain.ErrReconstructionSkipped.
	Reconstruct(ctx context.Context, obj domain.DecodedObject, rc *ReconstructContext) ([]domain.Artifact, error)
}

// ReconstructorRegistry dispatches decoded objects to reconstructors by type tag.
type ReconstructorRegistry interface {
	// Lookup returns the reconstructor for a type tag. Unknown tags return false
	// and their objects are ignored.
	Lookup(tag domain.TypeTag) (Reconstructor, bool)
}
