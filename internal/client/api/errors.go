package api

import (
	"fmt"

	"github.com/dmarakov/storypin/internal/common"
)

// StatusError is a non-2xx HTTP response from the story API, carrying the
// server's envelope message when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Unwrap maps well-known statuses onto the shared sentinels so callers can
// use errors.Is without knowing HTTP.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case 401:
		return common.ErrAuthRequired
	case 403:
		return common.ErrForbidden
	case 404:
		return common.ErrNotFound
	default:
		return nil
	}
}
