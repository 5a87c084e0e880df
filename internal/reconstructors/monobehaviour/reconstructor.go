// Package monobehaviour reconstructs opaque structured-data objects as documents.
package monobehaviour

import (
	"context"
	"fmt"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/reconstructors/naming"
	"github.com/custodia-labs/assetsync/internal/reconstructors/tree"
)

// Priority places structured-data objects after the containers that embed them.
const Priority = 30

// Ensure Reconstructor implements the interface.
var _ driven.Reconstructor = (*Reconstructor)(nil)

// Reconstructor writes one document per structured-data object.
type Reconstructor struct{}

// New creates a structured-data reconstructor.
func New() *Reconstructor {
	return &Reconstructor{}
}

// TypeTag returns the type this reconstructor handles.
func (r *Reconstructor) TypeTag() domain.TypeTag {
	return domain.TypeMonoBehaviour
}

// Priority returns the processing priority.
func (r *Reconstructor) Priority() int {
	return Priority
}

// Reconstruct normalises the object's tree into a document named after the object.
func (r *Reconstructor) Reconstruct(_ context.Context, obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error) {
	id := obj.PathID()
	doc, err := Read(rc.Index, id)
	if err != nil {
		return nil, err
	}
	if doc.Tree == nil {
		return nil, fmt.Errorf("%w: object %d has no data", domain.ErrReconstructionSkipped, id)
	}

	name := naming.Safe(doc.Name, domain.TypeMonoBehaviour, id)
	return []domain.Artifact{domain.NewDocument(naming.Join(rc.Destination, name), tree.Normalise(doc.Tree), id)}, nil
}

// Read returns the document fields of a structured-data entry.
func Read(index *domain.PathIDIndex, id int64) (domain.DocumentFields, error) {
	f, err := index.Fields(id)
	if err != nil {
		return domain.DocumentFields{}, err
	}
	doc, ok := f.(domain.DocumentFields)
	if !ok {
		return domain.DocumentFields{}, fmt.Errorf("%w: object %d has %T fields", domain.ErrUnsupportedType, id, f)
	}
	return doc, nil
}
