package middleware

import (
	"net/http"
	"strconv"
	"time"

	"stay-concierge/pkg/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request counts and latency under the chi route pattern,
// so path ids do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		metrics.ObserveHTTP(route, r.Method, strconv.Itoa(rw.statusCode), time.Since(start).Seconds())
	})
}
