package middleware

import (
	"net/http"
	"sync/atomic"
)

// Metrics returns middleware that feeds the request and error counters
// backing the /metrics endpoint. Any 4xx or 5xx response counts as an error.
func Metrics(requestCount, errorCount *atomic.Int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCount.Add(1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if rw.statusCode >= http.StatusBadRequest {
				errorCount.Add(1)
			}
		})
	}
}
