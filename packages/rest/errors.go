package rest

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod is returned by API for a request whose method is
// unset or outside the supported set. It is reported before any network
// I/O takes place.
var ErrUnsupportedMethod = errors.New("unsupported method")

// URLError reports a base URL, endpoint and query combination that could
// not be assembled into a valid URL. API wraps it into its single error
// return; the cause stays reachable with errors.As.
type URLError struct {
	Input string
	Err   error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.Input, e.Err)
}

func (e *URLError) Unwrap() error { return e.Err }
