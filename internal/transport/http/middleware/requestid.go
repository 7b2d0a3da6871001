package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

const KeyRequestID = "X-Request-ID"

// RequestID tags every outgoing request with an X-Request-ID unless the caller set one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(KeyRequestID) == "" {
				req = req.Clone(req.Context())
				req.Header.Set(KeyRequestID, uuid.NewString())
			}
			return next.RoundTrip(req)
		})
	}
}
