package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit 全局令牌桶限速；请求在令牌可用前阻塞，ctx 取消则放弃
func RateLimit(rps rate.Limit, burst int) Middleware {
	lim := rate.NewLimiter(rps, burst)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := lim.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}
