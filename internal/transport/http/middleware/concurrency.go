package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimit caps the number of requests in flight; a slot is held until the body is closed.
func ConcurrencyLimit(max int64) Middleware {
	sem := semaphore.NewWeighted(max)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := sem.Acquire(req.Context(), 1); err != nil {
				return nil, err
			}
			resp, err := next.RoundTrip(req)
			if err != nil {
				sem.Release(1)
				return nil, err
			}
			releaseOnClose(resp, func() { sem.Release(1) })
			return resp, nil
		})
	}
}
