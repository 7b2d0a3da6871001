package rest

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindRejected means the backend answered with a non-2xx status.
	KindRejected
	// KindDecode means a 2xx body could not be parsed.
	KindDecode
	// KindRequest means the request could not be built.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	case KindDecode:
		return "decode"
	case KindRequest:
		return "request"
	}
	return "unknown"
}

// Error is the only error type Call returns. Status is 0 when no response arrived.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// As extracts *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNetwork reports whether err is a connectivity failure.
func IsNetwork(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindNetwork
}

// StatusOf returns the HTTP status carried by err, 0 when there is none.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return 0
}

func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }
