package domain

import "image"

// TypeTag identifies the engine type of a decoded object.
type TypeTag string

// Type tags the pipeline knows how to reconstruct.
const (
	// TypeGameObject is a hierarchical container of components and child objects.
	TypeGameObject TypeTag = "GameObject"

	// TypeMaterial references several textures through named slots.
	TypeMaterial TypeTag = "Material"

	// TypeMonoBehaviour carries a generic tree of structured data.
	TypeMonoBehaviour TypeTag = "MonoBehaviour"

	// TypeTexture2D is a single image plane.
	TypeTexture2D TypeTag = "Texture2D"

	// TypeSprite is a rectangle of an atlas texture.
	TypeSprite TypeTag = "Sprite"
)

// DecodedObject is an engine object produced by an asset decoder.
// Its fields are materialised lazily by Read.
type DecodedObject interface {
	// TypeTag returns the engine type of the object.
	TypeTag() TypeTag

	// PathID returns the object's identifier, unique within one extraction group.
	PathID() int64

	// Read materialises the type-specific fields.
	Read() (Fields, error)
}

// Fields is the closed set of type-specific field sets a decoder yields.
type Fields interface {
	fields()
}

// TextureFields holds a decoded pixel buffer.
type TextureFields struct {
	// Name is the texture name.
	Name string

	// Image is the decoded pixel buffer, top row first.
	Image image.Image
}

// DocumentFields holds a generic tree of scalars, maps and arrays.
type DocumentFields struct {
	// Name is the object name.
	Name string

	// Tree is the engine-serialised tree. Maps are map[string]any, arrays []any.
	Tree any
}

// TextureSlot binds a named material slot to a texture path id.
type TextureSlot struct {
	// Name is the slot name (e.g. "_MainTex").
	Name string

	// PathID references the texture, 0 when unset.
	PathID int64
}

// MaterialFields holds the texture slots of a material.
type MaterialFields struct {
	// Name is the material name.
	Name string

	// Slots lists the material's texture slots in declaration order.
	Slots []TextureSlot
}

// Slot returns the texture path id bound to a slot name.
func (m MaterialFields) Slot(name string) (int64, bool) {
	if name == "" {
		return 0, false
	}
	for _, s := range m.Slots {
		if s.Name == name && s.PathID != 0 {
			return s.PathID, true
		}
	}
	return 0, false
}

// PackingRotation describes how a sprite was rotated or flipped when packed.
type PackingRotation int

// Packing rotations, matching the engine's enumeration.
const (
	PackingRotationNone PackingRotation = iota
	PackingRotationFlipHorizontal
	PackingRotationFlipVertical
	PackingRotationRotate180
	PackingRotationRotate90
)

// PackingMode describes how a sprite's visible region was packed.
type PackingMode int

// Packing modes, matching the engine's enumeration.
const (
	// PackingModeTight means the visible region follows the sprite's outline polygon.
	PackingModeTight PackingMode = iota

	// PackingModeRectangle means the full bounding rectangle is visible.
	PackingModeRectangle
)

// Point is a 2D coordinate in sprite-local pixels, origin at the bottom-left of the rect.
type Point struct {
	X float32
	Y float32
}

// Rect is an axis aligned rectangle in texture space, origin at the bottom-left.
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// SpriteFields holds an atlas sprite's geometry and packing metadata.
type SpriteFields struct {
	// Name is the sprite name.
	Name string

	// Texture references the atlas texture.
	Texture int64

	// Rect is the sprite's rectangle inside the atlas.
	Rect Rect

	// Packed indicates the sprite was placed by an atlas packer.
	Packed bool

	// Rotation is the packing rotation to undo when Packed.
	Rotation PackingRotation

	// Mode is the packing mode.
	Mode PackingMode

	// Outline lists polygons drawn as triangle fans.
	Outline [][]Point

	// Vertices and Indices describe an optional triangle mesh.
	Vertices []Point
	Indices  []int
}

// Tight reports whether the visible region is a polygon rather than the full rectangle.
func (s SpriteFields) Tight() bool {
	return s.Packed && s.Mode == PackingModeTight && (len(s.Outline) > 0 || len(s.Indices) >= 3)
}

// GameObjectFields holds the structure of a hierarchical container object.
type GameObjectFields struct {
	// Name is the object name.
	Name string

	// Parent references the parent container, 0 for roots.
	Parent int64

	// Children references nested containers.
	Children []int64

	// Components references embedded structured-data objects.
	Components []int64
}

func (TextureFields) fields()    {}
func (DocumentFields) fields()   {}
func (MaterialFields) fields()   {}
func (SpriteFields) fields()     {}
func (GameObjectFields) fields() {}
