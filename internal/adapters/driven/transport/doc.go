// Package transport implements driven.Downloader over HTTP.
//
// Each download is a single request; failures are returned to the caller as-is.
// Requests are throttled by a token bucket (golang.org/x/time/rate), and a
// Retry-After on a 429 or 503 response pauses the requests that follow it. Content is streamed to a temporary file
// next to the destination and renamed into place; a failed transfer leaves no
// file behind.
package transport
