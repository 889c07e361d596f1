package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/atlasai/outbound/internal/infra/metrics"
)

// Metrics records request counts and latency per chi route pattern, so
// /t/o/{trackingID} is one series rather than one per tracking id.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, strconv.Itoa(ww.Status()))
		metrics.ObserveHTTPDuration(route, time.Since(start).Seconds())
	})
}
