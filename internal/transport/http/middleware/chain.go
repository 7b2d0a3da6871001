package middleware

import (
	"io"
	"net/http"
	"sync"
)

// Middleware decorates an outgoing round tripper.
type Middleware func(http.RoundTripper) http.RoundTripper

type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// Chain wraps base so that mws[0] sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			base = mws[i](base)
		}
	}
	return base
}

// onCloseBody runs fn once, when the response body is closed.
type onCloseBody struct {
	io.ReadCloser
	once sync.Once
	fn   func()
}

func (b *onCloseBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.fn)
	return err
}

func releaseOnClose(resp *http.Response, fn func()) {
	if resp == nil || resp.Body == nil {
		fn()
		return
	}
	resp.Body = &onCloseBody{ReadCloser: resp.Body, fn: fn}
}
