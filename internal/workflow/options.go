package workflow

import (
	"errors"

	"go.uber.org/zap"

	"user-admin-console/internal/domain"
)

var (
	// ErrBusy is returned when a delete is already running.
	ErrBusy = errors.New("delete in progress")
	// ErrNotConfirming is returned by Confirm without a pending request.
	ErrNotConfirming = errors.New("no delete awaiting confirmation")
	// ErrSubmitting is returned while a submit of the same form is in flight.
	ErrSubmitting = errors.New("form is already submitting")
	ErrFormDone   = errors.New("form already submitted")
	ErrNotOnPage  = errors.New("user is not on the current page")
	ErrStale      = errors.New("result superseded by a newer request")
	ErrClosed     = errors.New("view closed")
)

type options struct {
	log   *zap.Logger
	limit int
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithLimit sets the page size of a UserList.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop(), limit: domain.DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
