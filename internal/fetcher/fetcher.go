// Package fetcher retrieves career page text over plain HTTP or a headless
// browser. Timeouts live here; callers only see text or an error.
package fetcher

import "fmt"

// Error wraps a failed fetch with the URL it targeted.
type Error struct {
	URL   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
