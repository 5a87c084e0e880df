package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors, which are wrapped with them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown decoder or output format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrMalformedManifest indicates a manifest line could not be parsed.
	// It is fatal for the region being synced: nothing else can run without a manifest.
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrFetchFailed indicates a single content item could not be materialised.
	// The item is excluded from extraction; sibling fetches continue.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDecodeFailed indicates an extraction group could not be decoded.
	// That group's reconstruction is abandoned; other groups proceed.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrReconstructionSkipped indicates an object yields no artifact, either because
	// required fields are missing or a same-group reference did not resolve.
	// It is a soft outcome and is never reported as an error.
	ErrReconstructionSkipped = errors.New("reconstruction skipped")
)
