package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNotHTML is returned by Page.Document for PDF or binary bodies.
	ErrNotHTML = errors.New("page is not an HTML document")
	// ErrEmptyBody is returned when a fetch succeeds with nothing in it.
	ErrEmptyBody = errors.New("empty response body")
)

// FetchError describes a network failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
