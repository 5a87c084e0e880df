package cborbundle

import (
	"bytes"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

var (
	// zstdMagic starts every zstd frame.
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

	cborNull = []byte{0xf6}
)

// PixelFormat names a texture pixel layout.
type PixelFormat string

// Supported pixel formats.
const (
	FormatRGBA32 PixelFormat = "RGBA32"
	FormatRGB24  PixelFormat = "RGB24"
	FormatAlpha8 PixelFormat = "Alpha8"
	FormatR8     PixelFormat = "R8"
)

// BytesPerPixel returns the pixel size, or 0 for unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA32:
		return 4
	case FormatRGB24:
		return 3
	case FormatAlpha8, FormatR8:
		return 1
	default:
		return 0
	}
}

type record struct {
	Type   string          `cbor:"type"`
	PathID int64           `cbor:"path_id"`
	Fields cbor.RawMessage `cbor:"fields"`
}

type textureWire struct {
	Name   string      `cbor:"name"`
	Width  int         `cbor:"width"`
	Height int         `cbor:"height"`
	Format PixelFormat `cbor:"format"`
	Pixels []byte      `cbor:"pixels"`
}

type documentWire struct {
	Name string `cbor:"name"`
	Tree any    `cbor:"tree"`
}

type slotWire struct {
	Name   string `cbor:"name"`
	PathID int64  `cbor:"path_id"`
}

type materialWire struct {
	Name  string     `cbor:"name"`
	Slots []slotWire `cbor:"slots"`
}

type pointWire struct {
	X float32 `cbor:"x"`
	Y float32 `cbor:"y"`
}

type rectWire struct {
	X      float32 `cbor:"x"`
	Y      float32 `cbor:"y"`
	Width  float32 `cbor:"width"`
	Height float32 `cbor:"height"`
}

type spriteWire struct {
	Name     string        `cbor:"name"`
	Texture  int64         `cbor:"texture"`
	Rect     rectWire      `cbor:"rect"`
	Packed   bool          `cbor:"packed"`
	Rotation int           `cbor:"rotation"`
	Mode     int           `cbor:"mode"`
	Outline  [][]pointWire `cbor:"outline,omitempty"`
	Vertices []pointWire   `cbor:"vertices,omitempty"`
	Indices  []int         `cbor:"indices,omitempty"`
}

type gameObjectWire struct {
	Name       string  `cbor:"name"`
	Parent     int64   `cbor:"parent,omitempty"`
	Children   []int64 `cbor:"children,omitempty"`
	Components []int64 `cbor:"components,omitempty"`
}

// CBOR modes and the zstd codec are reused across calls; all are safe for
// concurrent use.
var (
	encMode     cbor.EncMode
	decMode     cbor.DecMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborbundle: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Untyped maps in structured-data trees decode as map[string]any.
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels:  65535,
		MaxArrayElements: 1 << 26,
		MaxMapPairs:      1 << 26,
	}.DecMode()
	if err != nil {
		panic("cborbundle: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cborbundle: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cborbundle: zstd decoder initialization failed: " + err.Error())
	}
}

func isZstd(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}
