package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/metrics"
)

// nodeMetricsRequest is the JSON body accepted by the aggregation endpoint.
type nodeMetricsRequest struct {
	Metrics   []metrics.MetricID `json:"metrics"`
	Timerange metrics.TimeRange  `json:"timerange"`
	CloudID   string             `json:"cloudId"`
}

// nodeMetricsResponse wraps the aggregated series list.
type nodeMetricsResponse struct {
	NodeType metrics.NodeType            `json:"nodeType"`
	NodeID   string                      `json:"nodeId"`
	Metrics  []metrics.MetricSeriesResult `json:"metrics"`
}

func (s *Server) handleGetNodeMetrics(w http.ResponseWriter, r *http.Request) {
	req, err := s.buildMetricRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := metricsCacheKey(*req)
	if cached, found := s.cache.Get(cacheKey); found {
		s.respondJSON(w, http.StatusOK, cached)
		return
	}

	results, err := s.metricsService.GetMetrics(r.Context(), *req)
	if err != nil {
		s.logger.Error("Failed to aggregate node metrics",
			zap.String("nodeType", string(req.NodeType)),
			zap.String("nodeId", req.NodeIDs.NodeID),
			zap.Error(err))
		s.respondError(w, statusForError(err), err.Error())
		return
	}

	response := nodeMetricsResponse{
		NodeType: req.NodeType,
		NodeID:   req.NodeIDs.NodeID,
		Metrics:  results,
	}
	s.cache.Set(cacheKey, response)

	s.respondJSON(w, http.StatusOK, response)
}

// buildMetricRequest assembles a MetricRequest from the URL parameters, the
// JSON body and the configured source for the node type.
func (s *Server) buildMetricRequest(r *http.Request) (*metrics.MetricRequest, error) {
	nodeType := chi.URLParam(r, "nodeType")
	nodeID := chi.URLParam(r, "nodeId")
	if nodeType == "" || nodeID == "" {
		return nil, fmt.Errorf("nodeType and nodeId are required")
	}

	source, ok := s.config.Sources[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", nodeType)
	}

	var body nodeMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid request body: %v", err)
	}
	if len(body.Metrics) == 0 {
		return nil, fmt.Errorf("at least one metric is required")
	}

	return &metrics.MetricRequest{
		NodeType: metrics.NodeType(nodeType),
		NodeIDs: metrics.NodeIdentifier{
			NodeID:  nodeID,
			CloudID: body.CloudID,
		},
		Metrics:   body.Metrics,
		Timerange: body.Timerange,
		Source: metrics.SourceConfiguration{
			MetricAlias: source.MetricAlias,
			LogAlias:    source.LogAlias,
			Fields: metrics.SourceFields{
				ID:        source.IDField,
				Timestamp: source.TimestampField,
			},
		},
	}, nil
}

func metricsCacheKey(req metrics.MetricRequest) string {
	ids := make([]string, 0, len(req.Metrics))
	for _, id := range req.Metrics {
		ids = append(ids, string(id))
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%s",
		req.NodeType, req.NodeIDs.NodeID, req.NodeIDs.CloudID,
		strings.Join(ids, ","), req.Timerange.From, req.Timerange.To, req.Timerange.Interval)
}
