package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the API server
var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infrascope_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infrascope_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// Search backend call metrics
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infrascope_backend_requests_total",
			Help: "Total number of requests to the search backend",
		},
		[]string{"operation", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infrascope_backend_request_duration_seconds",
			Help:    "Search backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	// Aggregation metrics
	aggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infrascope_aggregations_total",
			Help: "Total number of node metric aggregations",
		},
		[]string{"node_type", "status"},
	)

	aggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infrascope_aggregation_duration_seconds",
			Help:    "Node metric aggregation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"node_type", "status"},
	)

	// WebSocket metrics
	websocketConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infrascope_websocket_connections_total",
			Help: "Total number of WebSocket connections",
		},
		[]string{"stream_type"},
	)

	websocketConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "infrascope_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
		[]string{"stream_type"},
	)

	// Rate limiting metrics
	rateLimitedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infrascope_rate_limited_requests_total",
			Help: "Total number of rate limited requests",
		},
		[]string{"endpoint"},
	)

	// Authentication metrics
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infrascope_auth_requests_total",
			Help: "Total number of authentication requests",
		},
		[]string{"auth_mode", "status"},
	)
)

// RecordHTTPRequest records metrics for HTTP requests
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	labels := prometheus.Labels{
		"method":      method,
		"path":        path,
		"status_code": strconv.Itoa(statusCode),
	}

	httpRequestsTotal.With(labels).Inc()
	httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// RecordBackendRequest records metrics for search backend requests
func RecordBackendRequest(operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	labels := prometheus.Labels{
		"operation": operation,
		"status":    status,
	}

	backendRequestsTotal.With(labels).Inc()
	backendRequestDuration.With(labels).Observe(duration.Seconds())
}

// RecordAggregation records metrics for node metric aggregations
func RecordAggregation(nodeType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	labels := prometheus.Labels{
		"node_type": nodeType,
		"status":    status,
	}

	aggregationsTotal.With(labels).Inc()
	aggregationDuration.With(labels).Observe(duration.Seconds())
}

// RecordWebSocketConnection records WebSocket connection metrics
func RecordWebSocketConnection(streamType string) {
	websocketConnectionsTotal.With(prometheus.Labels{"stream_type": streamType}).Inc()
	websocketConnectionsActive.With(prometheus.Labels{"stream_type": streamType}).Inc()
}

// RecordWebSocketDisconnection records WebSocket disconnection metrics
func RecordWebSocketDisconnection(streamType string) {
	websocketConnectionsActive.With(prometheus.Labels{"stream_type": streamType}).Dec()
}

// RecordRateLimitedRequest records rate limiting metrics
func RecordRateLimitedRequest(endpoint string) {
	rateLimitedRequestsTotal.With(prometheus.Labels{"endpoint": endpoint}).Inc()
}

// RecordAuthRequest records authentication request metrics
func RecordAuthRequest(authMode, status string) {
	authRequestsTotal.With(prometheus.Labels{
		"auth_mode": authMode,
		"status":    status,
	}).Inc()
}
