package fetch

import (
	"errors"
	"fmt"
)

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidTarget reports whether the caller supplied a URL that must not be fetched,
// as opposed to a reachable host that failed.
func (e *Error) InvalidTarget() bool {
	return e.Message == "invalid URL" || errors.Is(e.Cause, ErrBlockedAddress)
}
