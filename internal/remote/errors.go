package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks network failures, timeouts and non-2xx responses.
	ErrTransport = errors.New("transport failure")
	// ErrDecode marks response bodies that cannot be understood.
	ErrDecode = errors.New("decode failure")
)

// TransportError describes a failed request.
type TransportError struct {
	Err        error
	Method     string
	Path       string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// DecodeError describes a body that could not be mapped to a setting.
type DecodeError struct {
	Err  error
	Path string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}
