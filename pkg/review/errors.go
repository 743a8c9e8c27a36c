package review

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a book id does not resolve to a book. This
// covers malformed ids too: a string that cannot be an ObjectID names no book.
var ErrNotFound = errors.New("not found")

// UpstreamError reports a failed store or cache call. Nothing is retried;
// the request that hit it fails as a whole.
type UpstreamError struct {
	// Op names the failed step, e.g. "cache get" or "store append review".
	Op  string
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
