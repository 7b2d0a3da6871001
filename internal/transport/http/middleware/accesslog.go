package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 敏感字段 key（query 中统一按 key）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func maskQuery(kv url.Values) map[string][]string {
	out := map[string][]string{}
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// AccessLog writes one summary line per outgoing request. Bodies are never logged.
func AccessLog(l *zap.Logger) Middleware {
	if l == nil {
		l = zap.NewNop()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			fields := []zap.Field{
				zap.String("rid", req.Header.Get(KeyRequestID)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Any("query", maskQuery(req.URL.Query())),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				l.Warn("API", append(fields, zap.Error(err))...)
				return nil, err
			}
			l.Info("API", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
