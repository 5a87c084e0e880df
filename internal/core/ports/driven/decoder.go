package driven

import (
	"context"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// AssetDecoder turns raw bundle files into decoded objects.
// Decode is called once per extraction group with every file of the group, so
// that path ids referencing objects in sibling files resolve.
type AssetDecoder interface {
	// Decode returns every object contained in the files.
	Decode(ctx context.Context, files []string) ([]domain.DecodedObject, error)
}
