package domain

import "image"

// ArtifactKind distinguishes documents from images.
type ArtifactKind int

const (
	// ArtifactDocument is a structured document.
	ArtifactDocument ArtifactKind = iota

	// ArtifactImage is a raster image.
	ArtifactImage
)

// String returns the string representation.
func (k ArtifactKind) String() string {
	switch k {
	case ArtifactDocument:
		return "document"
	case ArtifactImage:
		return "image"
	default:
		return unknownDescription
	}
}

// Artifact is a reconstructed document or image plus its destination.
// It is created by a reconstructor and consumed only by the output writer.
type Artifact struct {
	// Path is the slash separated destination relative to the output root,
	// without extension. The writer appends the extension for the configured format.
	Path string

	// Kind selects which of Document or Image is set.
	Kind ArtifactKind

	// Document is the document value for ArtifactDocument.
	Document any

	// Image is the raster for ArtifactImage.
	Image image.Image

	// Sources lists the path ids emitted or folded into this artifact.
	Sources []int64
}

// NewDocument creates a document artifact.
func NewDocument(path string, doc any, sources ...int64) Artifact {
	return Artifact{Path: path, Kind: ArtifactDocument, Document: doc, Sources: sources}
}

// NewImage creates an image artifact.
func NewImage(path string, img image.Image, sources ...int64) Artifact {
	return Artifact{Path: path, Kind: ArtifactImage, Image: img, Sources: sources}
}
