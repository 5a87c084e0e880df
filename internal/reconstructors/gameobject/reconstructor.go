// Package gameobject reconstructs hierarchies of container objects. Each
// container becomes one document holding its embedded structured-data
// components; nested containers go to a subfolder named after their parent.
package gameobject

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/logger"
	"github.com/custodia-labs/assetsync/internal/reconstructors/monobehaviour"
	"github.com/custodia-labs/assetsync/internal/reconstructors/naming"
	"github.com/custodia-labs/assetsync/internal/reconstructors/tree"
)

// Priority places containers first so they consume their components.
const Priority = 10

// Ensure Reconstructor implements the interface.
var _ driven.Reconstructor = (*Reconstructor)(nil)

// Reconstructor walks a container hierarchy from its root.
type Reconstructor struct{}

// New creates a container reconstructor.
func New() *Reconstructor {
	return &Reconstructor{}
}

// TypeTag returns the type this reconstructor handles.
func (r *Reconstructor) TypeTag() domain.TypeTag {
	return domain.TypeGameObject
}

// Priority returns the processing priority.
func (r *Reconstructor) Priority() int {
	return Priority
}

type node struct {
	id  int64
	dir string
}

// Reconstruct writes the hierarchy rooted at obj. Objects below a root are
// skipped on their own turn; the root's walk covers them.
func (r *Reconstructor) Reconstruct(_ context.Context, obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error) {
	id := obj.PathID()
	root, ok := read(rc.Index, id)
	if !ok {
		return nil, fmt.Errorf("%w: container %d is unreadable", domain.ErrReconstructionSkipped, id)
	}
	if covered(rc.Index, id, root) {
		return nil, fmt.Errorf("%w: container %d is below another root", domain.ErrReconstructionSkipped, id)
	}

	var artifacts []domain.Artifact
	visited := make(map[int64]bool)
	stack := []node{{id: id, dir: rc.Destination}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n.id] {
			continue
		}
		visited[n.id] = true

		f, ok := read(rc.Index, n.id)
		if !ok {
			continue
		}
		name := naming.Safe(f.Name, domain.TypeGameObject, n.id)

		sources := []int64{n.id}
		var components []any
		for _, cid := range f.Components {
			doc, ok := component(rc.Index, cid)
			if !ok {
				continue
			}
			components = append(components, tree.Normalise(doc.Tree))
			rc.Index.Consume(cid)
			sources = append(sources, cid)
		}
		if len(components) > 0 {
			artifacts = append(artifacts, domain.NewDocument(naming.Join(n.dir, name), components, sources...))
		}
		if n.id != id {
			rc.Index.Consume(n.id)
		}

		childDir := naming.Join(n.dir, name)
		for i := len(f.Children) - 1; i >= 0; i-- {
			child := f.Children[i]
			if !visited[child] && isContainer(rc.Index, child) {
				stack = append(stack, node{id: child, dir: childDir})
			}
		}
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: container %d has no components", domain.ErrReconstructionSkipped, id)
	}
	logger.Debug("container %d: %d documents from %d objects", id, len(artifacts), len(visited))
	return artifacts, nil
}

// covered reports whether another container's walk reaches id. The parent chain
// is followed only while each parent lists the object among its children, since
// the walk descends through Children; an object its parent does not list is a
// root of its own. In a cycle the lowest path id acts as root.
func covered(index *domain.PathIDIndex, id int64, f domain.GameObjectFields) bool {
	path := []int64{id}
	child, parent := id, f.Parent
	for {
		pf, ok := listsChild(index, parent, child)
		if !ok {
			return len(path) > 1
		}
		for i, seen := range path {
			if seen != parent {
				continue
			}
			if i > 0 {
				return true
			}
			return slices.Min(path) != id
		}
		path = append(path, parent)
		child, parent = parent, pf.Parent
	}
}

// listsChild reads parent when it is a container whose Children include child.
func listsChild(index *domain.PathIDIndex, parent, child int64) (domain.GameObjectFields, bool) {
	if !isContainer(index, parent) {
		return domain.GameObjectFields{}, false
	}
	pf, ok := read(index, parent)
	if !ok || !slices.Contains(pf.Children, child) {
		return domain.GameObjectFields{}, false
	}
	return pf, true
}

func isContainer(index *domain.PathIDIndex, id int64) bool {
	if id == 0 {
		return false
	}
	e, ok := index.Lookup(id)
	return ok && e.Object.TypeTag() == domain.TypeGameObject
}

func read(index *domain.PathIDIndex, id int64) (domain.GameObjectFields, bool) {
	f, err := index.Fields(id)
	if err != nil {
		return domain.GameObjectFields{}, false
	}
	g, ok := f.(domain.GameObjectFields)
	return g, ok
}

// component resolves an embedded structured-data object that nobody consumed yet.
func component(index *domain.PathIDIndex, id int64) (domain.DocumentFields, bool) {
	e, ok := index.Lookup(id)
	if !ok || e.State == domain.EntryConsumed || e.Object.TypeTag() != domain.TypeMonoBehaviour {
		return domain.DocumentFields{}, false
	}
	doc, err := monobehaviour.Read(index, id)
	if err != nil || doc.Tree == nil {
		return domain.DocumentFields{}, false
	}
	return doc, true
}
