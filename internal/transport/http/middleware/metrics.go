package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "userapi_client_requests_total", Help: "Count of outgoing users API requests"},
		[]string{"route", "method", "status"},
	)
	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "userapi_client_request_duration_seconds",
			Help:    "Latency of outgoing users API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"},
	)
)

func init() { prometheus.MustRegister(apiReqTotal, apiLatency) }

// Collectors returns the client metrics, for pushing from short-lived processes.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{apiReqTotal, apiLatency}
}

// Metrics records count and latency per route; network failures are labelled status="error".
func Metrics() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			route := Route(req.URL.Path)
			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			apiReqTotal.WithLabelValues(route, req.Method, status).Inc()
			apiLatency.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
			return resp, err
		})
	}
}

// Route collapses resource ids so labels stay bounded: /users/42 -> /users/:id.
func Route(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "/"
	}
	for i := 1; i < len(parts); i++ {
		parts[i] = ":id"
	}
	return "/" + strings.Join(parts, "/")
}
