package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/metrics"
	"github.com/aaronlmathis/infrascope/internal/telemetry"
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// watchSnapshot is one refresh pushed over the watch stream.
type watchSnapshot struct {
	Timestamp int64                        `json:"timestamp"`
	Metrics   []metrics.MetricSeriesResult `json:"metrics,omitempty"`
	Error     string                       `json:"error,omitempty"`
}

// handleWatchNodeMetrics streams aggregation snapshots over a WebSocket. The
// query window slides with each refresh: from = now - window, to = now.
func (s *Server) handleWatchNodeMetrics(w http.ResponseWriter, r *http.Request) {
	nodeType := chi.URLParam(r, "nodeType")
	nodeID := chi.URLParam(r, "nodeId")

	source, ok := s.config.Sources[nodeType]
	if !ok {
		s.respondError(w, http.StatusBadRequest, "unknown node type "+nodeType)
		return
	}

	query := r.URL.Query()
	metricIDs := splitMetricIDs(query.Get("metrics"))
	if len(metricIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one metric is required")
		return
	}

	window := 15 * time.Minute
	if v := query.Get("window"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid window: "+err.Error())
			return
		}
		window = parsed
	}

	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	telemetry.RecordWebSocketConnection("node_metrics")
	defer telemetry.RecordWebSocketDisconnection("node_metrics")

	ctx := r.Context()
	logger := s.logger.With(
		zap.String("nodeType", nodeType),
		zap.String("nodeId", nodeID))
	logger.Debug("Node metrics watch started", zap.Duration("window", window))

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.config.WatchRefreshInterval())
	defer ticker.Stop()

	for {
		now := time.Now()
		req := metrics.MetricRequest{
			NodeType: metrics.NodeType(nodeType),
			NodeIDs: metrics.NodeIdentifier{
				NodeID:  nodeID,
				CloudID: query.Get("cloudId"),
			},
			Metrics: metricIDs,
			Timerange: metrics.TimeRange{
				From:     now.Add(-window).UnixMilli(),
				To:       now.UnixMilli(),
				Interval: query.Get("interval"),
			},
			Source: metrics.SourceConfiguration{
				MetricAlias: source.MetricAlias,
				LogAlias:    source.LogAlias,
				Fields: metrics.SourceFields{
					ID:        source.IDField,
					Timestamp: source.TimestampField,
				},
			},
		}

		snapshot := watchSnapshot{Timestamp: now.UnixMilli()}
		results, err := s.metricsService.GetMetrics(ctx, req)
		if err != nil {
			snapshot.Error = err.Error()
		} else {
			snapshot.Metrics = results
		}

		if err := conn.WriteJSON(snapshot); err != nil {
			logger.Debug("Node metrics watch closed", zap.Error(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func splitMetricIDs(raw string) []metrics.MetricID {
	parts := strings.Split(raw, ",")
	ids := make([]metrics.MetricID, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, metrics.MetricID(trimmed))
		}
	}
	return ids
}
