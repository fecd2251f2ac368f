package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/search"
)

// minIntervalSeconds is the smallest bucket width the calculator will ever
// recommend. Metric collectors rarely report more often than this.
const minIntervalSeconds = 30

// IntervalCalculator raises a query's time-bucket width to match the actual
// sample density of the modules a model depends on.
type IntervalCalculator struct {
	logger *zap.Logger
	client search.Client
}

// NewIntervalCalculator creates a new interval calculator.
func NewIntervalCalculator(logger *zap.Logger, client search.Client) *IntervalCalculator {
	return &IntervalCalculator{
		logger: logger,
		client: client,
	}
}

// Calculate probes the backend for the largest collection period among the
// modules named in requires and returns a lower-bound interval such as
// ">=30s". It returns the empty string when requires is empty or the range
// holds no matching samples, in which case the model's own interval hint
// stands. For a fixed backend state and identical inputs the result is
// deterministic.
func (c *IntervalCalculator) Calculate(ctx context.Context, indexPattern, timestampField string, timerange TimeRange, requires []string) (string, error) {
	if len(requires) == 0 {
		return "", nil
	}

	modules := make([]string, 0, len(requires))
	for _, req := range requires {
		if module, _, found := strings.Cut(req, "."); found {
			modules = append(modules, module)
		} else {
			modules = append(modules, req)
		}
	}

	body := map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"range": map[string]interface{}{
						timestampField: map[string]interface{}{
							"gte":    timerange.From,
							"lte":    timerange.To,
							"format": "epoch_millis",
						},
					}},
					{"terms": map[string]interface{}{"event.module": modules}},
				},
			},
		},
		"aggs": map[string]interface{}{
			"period": map[string]interface{}{
				"max": map[string]interface{}{"field": "metricset.period"},
			},
		},
	}

	resp, err := c.client.Search(ctx, indexPattern, body)
	if err != nil {
		return "", newBackendUnavailableError("interval probe", err)
	}

	if resp.TotalHits == 0 {
		return "", nil
	}

	periodMillis, ok := maxAggregationValue(resp.Aggregations, "period")
	if !ok {
		return "", nil
	}

	seconds := int64(math.Ceil(periodMillis / 1000))
	if seconds < minIntervalSeconds {
		seconds = minIntervalSeconds
	}

	interval := fmt.Sprintf(">=%ds", seconds)
	c.logger.Debug("Calculated metric interval",
		zap.Strings("modules", modules),
		zap.String("interval", interval))

	return interval, nil
}

// maxAggregationValue extracts the value of a max aggregation. Sparse ranges
// yield a null value, which reads back as absent.
func maxAggregationValue(aggregations map[string]json.RawMessage, name string) (float64, bool) {
	raw, ok := aggregations[name]
	if !ok {
		return 0, false
	}

	var agg struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil || agg.Value == nil {
		return 0, false
	}

	return *agg.Value, true
}
