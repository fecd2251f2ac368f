package metrics

import (
	"context"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/search"
)

// NodeValidator confirms that a node identifier exists in the backend before
// any metric query is issued.
type NodeValidator struct {
	logger *zap.Logger
	client search.Client
}

// NewNodeValidator creates a new node validator.
func NewNodeValidator(logger *zap.Logger, client search.Client) *NodeValidator {
	return &NodeValidator{
		logger: logger,
		client: client,
	}
}

// Exists issues a minimal existence query: a zero-size term filter on
// idField = nodeID, reading back whether any document matched. A backend
// failure propagates as a backend-unavailable error; there are no retries.
func (v *NodeValidator) Exists(ctx context.Context, indexPattern, idField, nodeID string) (bool, error) {
	body := map[string]interface{}{
		"size":            0,
		"terminate_after": 1,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{idField: nodeID}},
				},
			},
		},
	}

	resp, err := v.client.Search(ctx, indexPattern, body)
	if err != nil {
		return false, newBackendUnavailableError("node existence check", err)
	}

	exists := resp.TotalHits > 0
	v.logger.Debug("Node existence check completed",
		zap.String("nodeId", nodeID),
		zap.String("indexPattern", indexPattern),
		zap.Bool("exists", exists))

	return exists, nil
}
