package services

import (
	"path"
	"path/filepath"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// NewFetchTarget derives where a selected descriptor is cached and grouped.
//
// The cache path is keyed by content hash, so a new hash for a logical name
// never resolves to bytes cached for an earlier hash.
//
// The group key is the destination folder flattened with underscores, so every
// file destined for the same folder is decoded in the same extraction group no
// matter which order the files were fetched in.
func NewFetchTarget(cacheDir, region string, d domain.ContentDescriptor, destination string) domain.FetchTarget {
	group := domain.FlattenPath(destination)
	t := domain.FetchTarget{
		Descriptor:  d,
		Destination: destination,
		Group:       group,
		LocalPath:   filepath.Join(cacheDir, region, group, domain.FlattenPath(d.ContentHash), domain.FlattenPath(d.LogicalName)),
	}
	if d.Raw {
		t.OutputPath = path.Join(destination, path.Base(d.LogicalName))
	}
	return t
}
