// Package imaging provides the pixel-level operations used to reconstruct
// images: orientation changes, cropping, single-channel plane handling,
// colour-space merges and polygon masks.
//
// Every function returns a new *image.NRGBA (or plane) and leaves its inputs
// untouched, so decoded textures can be shared between reconstructors.
package imaging
