package search

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRequestFailed matches any *RequestFailedError via errors.Is.
	ErrRequestFailed = errors.New("search request failed")
	// ErrMalformedResponse matches any *MalformedResponseError via errors.Is.
	ErrMalformedResponse = errors.New("malformed search response")
)

// RequestFailedError is returned when the backend could not be reached or
// answered with a non-2xx status. StatusCode is 0 for transport failures.
type RequestFailedError struct {
	StatusCode int
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("search request failed: %v", e.Err)
	}
	return fmt.Sprintf("search request failed: unexpected status %d", e.StatusCode)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// MalformedResponseError is returned when a 2xx body does not match the
// envelope or result contract. Layer is the 1-based envelope depth that
// failed, or 0 when the innermost payload was rejected.
type MalformedResponseError struct {
	Layer    int
	Problems []string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	where := "result"
	if e.Layer > 0 {
		where = fmt.Sprintf("envelope layer %d", e.Layer)
	}
	if len(e.Problems) == 0 {
		return fmt.Sprintf("malformed search response (%s): %v", where, e.Err)
	}
	return fmt.Sprintf("malformed search response (%s): %s", where, strings.Join(e.Problems, "; "))
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
