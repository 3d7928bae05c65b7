package client

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidForm is returned by SubmitBooking when the form fails local
// validation. No request is sent in that case.
var ErrInvalidForm = errors.New("invalid booking form")

// RequestError is a non-2xx response. Message is the server's error text
// verbatim when the body carried one.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// TransportError wraps network and decoding failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAborted reports whether err came from a cancelled request context.
// Callers usually drop such errors silently.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// StatusCode returns the HTTP status of a *RequestError, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
