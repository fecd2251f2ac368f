package metrics

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/search"
)

// QueryDispatcher is the single call surface for issuing one metric query
// against the search backend. One attempt per call, no retries.
type QueryDispatcher struct {
	logger *zap.Logger
	client search.Client
}

// NewQueryDispatcher creates a new query dispatcher.
func NewQueryDispatcher(logger *zap.Logger, client search.Client) *QueryDispatcher {
	return &QueryDispatcher{
		logger: logger,
		client: client,
	}
}

// Dispatch runs one query model against the backend and returns the raw
// panel map. A context that is already cancelled fails immediately, before
// any network I/O. Backend failures propagate as backend-unavailable errors.
func (d *QueryDispatcher) Dispatch(ctx context.Context, model QueryModel, timerange TimeRange, filters []search.TermFilter) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := search.MetricQueryRequest{
		IndexPattern: model.IndexPattern,
		TimeField:    model.TimeField,
		Interval:     model.Interval,
		From:         timerange.From,
		To:           timerange.To,
		Filters:      filters,
		Body:         model.Body,
	}

	d.logger.Debug("Dispatching metric query",
		zap.String("metric", string(model.ID)),
		zap.String("interval", model.Interval),
		zap.String("indexPattern", model.IndexPattern))

	raw, err := d.client.RunMetricQuery(ctx, req)
	if err != nil {
		return nil, newBackendUnavailableError("metric query", err)
	}

	return raw, nil
}
