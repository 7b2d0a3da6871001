package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds one round trip including the body read.
func Timeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next.RoundTrip(req)
			}
			ctx, cancel := context.WithTimeout(req.Context(), d)
			resp, err := next.RoundTrip(req.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}
			releaseOnClose(resp, cancel)
			return resp, nil
		})
	}
}
