package domain

import (
	"fmt"
	"image"
	"sort"
)

// EntryState is the lifecycle state of a path id within a PathIDIndex.
//
// An entry starts Unprocessed, holding the decoded object. A reconstructor that
// derives an image from it moves it to Materialized. An entry folded into another
// artifact without an image of its own moves to Consumed. Consumed is terminal.
type EntryState int

const (
	// EntryUnprocessed holds a decoded object nobody has reconstructed yet.
	EntryUnprocessed EntryState = iota

	// EntryMaterialized holds a derived image for the path id.
	EntryMaterialized

	// EntryConsumed marks a path id folded into another artifact.
	EntryConsumed
)

// String returns the string representation.
func (s EntryState) String() string {
	switch s {
	case EntryUnprocessed:
		return "unprocessed"
	case EntryMaterialized:
		return "materialized"
	case EntryConsumed:
		return "consumed"
	default:
		return unknownDescription
	}
}

// IndexEntry is one path id's slot in a PathIDIndex.
type IndexEntry struct {
	// State is the entry's lifecycle state.
	State EntryState

	// Object is the decoded object the entry was built from.
	Object DecodedObject

	// Image is the derived image when State is EntryMaterialized.
	Image image.Image
}

type indexSlot struct {
	IndexEntry

	read    bool
	fields  Fields
	readErr error
}

// PathIDIndex maps path ids to objects or derived artifacts for one extraction group.
// It is built fresh per group, owned by the goroutine processing that group, and
// discarded afterwards. It is not safe for concurrent use.
type PathIDIndex struct {
	slots map[int64]*indexSlot
}

// NewPathIDIndex creates an empty index.
func NewPathIDIndex() *PathIDIndex {
	return &PathIDIndex{slots: make(map[int64]*indexSlot)}
}

// Add inserts a decoded object. Path ids must be unique within a group.
func (x *PathIDIndex) Add(obj DecodedObject) error {
	id := obj.PathID()
	if _, ok := x.slots[id]; ok {
		return fmt.Errorf("%w: duplicate path id %d", ErrInvalidInput, id)
	}
	x.slots[id] = &indexSlot{IndexEntry: IndexEntry{State: EntryUnprocessed, Object: obj}}
	return nil
}

// Len returns the number of entries.
func (x *PathIDIndex) Len() int {
	return len(x.slots)
}

// Lookup returns a copy of the entry for a path id.
// A path id outside the group is reported as absent.
func (x *PathIDIndex) Lookup(id int64) (IndexEntry, bool) {
	s, ok := x.slots[id]
	if !ok {
		return IndexEntry{}, false
	}
	return s.IndexEntry, true
}

// Fields returns the decoded fields of an entry, reading them on first use.
func (x *PathIDIndex) Fields(id int64) (Fields, error) {
	s, ok := x.slots[id]
	if !ok {
		return nil, fmt.Errorf("path id %d: %w", id, ErrNotFound)
	}
	if !s.read {
		s.fields, s.readErr = s.Object.Read()
		s.read = true
	}
	return s.fields, s.readErr
}

// Image resolves a path id to an image. Materialized entries return their derived
// image; unprocessed textures are read. Consumed or non-image entries return false.
func (x *PathIDIndex) Image(id int64) (image.Image, bool) {
	s, ok := x.slots[id]
	if !ok {
		return nil, false
	}
	switch s.State {
	case EntryMaterialized:
		return s.Image, s.Image != nil
	case EntryUnprocessed:
		if s.Object.TypeTag() != TypeTexture2D {
			return nil, false
		}
		f, err := x.Fields(id)
		if err != nil {
			return nil, false
		}
		tex, ok := f.(TextureFields)
		if !ok || !hasPixels(tex.Image) {
			return nil, false
		}
		return tex.Image, true
	default:
		return nil, false
	}
}

// MaterializedImage returns the derived image of a Materialized entry only.
func (x *PathIDIndex) MaterializedImage(id int64) (image.Image, bool) {
	s, ok := x.slots[id]
	if !ok || s.State != EntryMaterialized || s.Image == nil {
		return nil, false
	}
	return s.Image, true
}

// Materialize records a derived image for a path id. Consumed entries are left alone.
func (x *PathIDIndex) Materialize(id int64, img image.Image) bool {
	s, ok := x.slots[id]
	if !ok || s.State == EntryConsumed {
		return false
	}
	s.State = EntryMaterialized
	s.Image = img
	return true
}

// Consume marks a path id as folded into another artifact.
func (x *PathIDIndex) Consume(id int64) bool {
	s, ok := x.slots[id]
	if !ok {
		return false
	}
	s.State = EntryConsumed
	s.Image = nil
	return true
}

// IDs returns every path id in ascending order.
func (x *PathIDIndex) IDs() []int64 {
	ids := make([]int64, 0, len(x.slots))
	for id := range x.slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IDsOfType returns the path ids of one type in ascending order.
func (x *PathIDIndex) IDsOfType(tag TypeTag) []int64 {
	var ids []int64
	for id, s := range x.slots {
		if s.Object.TypeTag() == tag {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Snapshot returns the decoded objects in ascending path id order.
func (x *PathIDIndex) Snapshot() []DecodedObject {
	ids := x.IDs()
	objs := make([]DecodedObject, len(ids))
	for i, id := range ids {
		objs[i] = x.slots[id].Object
	}
	return objs
}

func hasPixels(img image.Image) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	return b.Dx() > 0 && b.Dy() > 0
}

// ProducedSet records path ids already emitted as an artifact or folded into one.
// It guarantees at most one artifact per decoded object.
type ProducedSet map[int64]struct{}

// NewProducedSet creates an empty set.
func NewProducedSet() ProducedSet {
	return make(ProducedSet)
}

// Add marks path ids as produced.
func (p ProducedSet) Add(ids ...int64) {
	for _, id := range ids {
		p[id] = struct{}{}
	}
}

// Has reports whether a path id was produced.
func (p ProducedSet) Has(id int64) bool {
	_, ok := p[id]
	return ok
}
