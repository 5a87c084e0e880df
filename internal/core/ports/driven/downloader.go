package driven

import "context"

// Downloader transfers remote content to local storage.
type Downloader interface {
	// Download writes the content at url to dst, creating parent directories.
	// On failure no partial file is left at dst. Returns the bytes written.
	Download(ctx context.Context, url, dst string) (int64, error)
}
