package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aaronlmathis/infrascope/internal/telemetry"
)

// PrometheusMiddleware records HTTP request metrics for Prometheus
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		telemetry.RecordHTTPRequest(r.Method, sanitizePath(r.URL.Path), ww.Status(), time.Since(start))
	})
}

// RequestIDResponseMiddleware adds the request ID to response headers
func RequestIDResponseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// sanitizePath normalizes URL paths for metrics to prevent cardinality explosion
func sanitizePath(path string) string {
	path = strings.TrimSuffix(path, "/")

	if strings.HasPrefix(path, "/api/v1/metrics/nodes/") {
		parts := strings.Split(path, "/")
		// /api/v1/metrics/nodes/{nodeType}/{nodeId}[/watch]
		if len(parts) >= 7 {
			normalized := "/api/v1/metrics/nodes/" + parts[5] + "/:id"
			if len(parts) == 8 && parts[7] == "watch" {
				return normalized + "/watch"
			}
			return normalized
		}
	}

	return path
}
