// Package cborbundle decodes the local bundle container format.
//
// A bundle file is a CBOR array of object records:
//
//	[{"type": "Texture2D", "path_id": 7, "fields": {...}}, ...]
//
// optionally wrapped in a single zstd frame, detected by its magic number.
// Record fields stay encoded until the object is read, so only the objects a
// reconstructor actually touches are decoded.
//
// Texture pixels are stored top row first in one of the formats RGBA32, RGB24,
// Alpha8 or R8.
package cborbundle
