package driven

import (
	"context"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// ArtifactWriter persists reconstructed artifacts under the output root.
// Writes create missing directories and overwrite unconditionally.
type ArtifactWriter interface {
	// Write encodes and stores an artifact. Returns the file path written.
	Write(ctx context.Context, artifact domain.Artifact) (string, error)

	// CopyRaw copies a cached file to rel under the output root.
	CopyRaw(ctx context.Context, src, rel string) (string, error)
}
