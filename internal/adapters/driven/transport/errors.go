package transport

import (
	"fmt"
	"time"
)

// StatusError is a non-success HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: HTTP %d (URL: %s)", e.StatusCode, e.URL)
}

// RateLimitError is a throttling response carrying the time to resume at.
type RateLimitError struct {
	StatusCode int
	ResetAt    time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("transport: rate limited (HTTP %d), resumes at %s",
		e.StatusCode, e.ResetAt.Format(time.RFC3339))
}

// SizeMismatchError reports a body shorter or longer than its Content-Length.
type SizeMismatchError struct {
	Expected int64
	Got      int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("transport: expected %d bytes, got %d", e.Expected, e.Got)
}
