package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// UserAgent identifies the client to content servers.
const UserAgent = "assetsync"

// Ensure Downloader implements the interface.
var _ driven.Downloader = (*Downloader)(nil)

// Options configures a Downloader.
type Options struct {
	// RateLimit caps downloads per second. 0 disables throttling.
	RateLimit float64

	// Client overrides the HTTP client. Nil uses a client with the transport defaults.
	Client *http.Client
}

// Downloader fetches content over HTTP into local files.
type Downloader struct {
	client      *http.Client
	rateLimiter *RateLimiter
}

// NewDownloader creates a Downloader.
func NewDownloader(opts Options) *Downloader {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{
		client:      client,
		rateLimiter: NewRateLimiter(opts.RateLimit),
	}
}

// Download writes the content at url to dst, creating parent directories.
// Each call makes exactly one request. A throttling response fails the call
// and delays the requests that follow it.
func (d *Downloader) Download(ctx context.Context, url, dst string) (int64, error) {
	if err := d.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if err := d.rateLimiter.CheckResponse(resp); err != nil {
		return 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("download %s: HTTP %d", url, resp.StatusCode)
		return 0, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return writeAtomic(dst, resp.Body, resp.ContentLength)
}

// writeAtomic streams r into a temp file beside dst and renames it into place.
func writeAtomic(dst string, r io.Reader, expected int64) (int64, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}
	if expected >= 0 && n != expected {
		return 0, &SizeMismatchError{Expected: expected, Got: n}
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return 0, fmt.Errorf("rename %s: %w", dst, err)
	}
	committed = true
	return n, nil
}
