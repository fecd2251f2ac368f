package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Reserved panel keys that carry backend metadata rather than metric payload.
const (
	reservedKeyType           = "type"
	reservedKeyUIRestrictions = "uiRestrictions"
)

// MetricRegistry answers whether a metric id is known to the catalog.
type MetricRegistry interface {
	IsKnownMetric(id MetricID) bool
}

// panel mirrors the backend's per-metric response unit.
type panel struct {
	Series []panelSeries `json:"series"`
}

type panelSeries struct {
	ID    string       `json:"id"`
	Label string       `json:"label"`
	Data  [][]*float64 `json:"data"`
}

// ResultNormalizer converts raw backend panel maps into the uniform series
// structure.
type ResultNormalizer struct {
	registry MetricRegistry
}

// NewResultNormalizer creates a new result normalizer backed by the given
// metric registry.
func NewResultNormalizer(registry MetricRegistry) *ResultNormalizer {
	return &ResultNormalizer{registry: registry}
}

// Normalize converts the raw panel map returned for one dispatched metric
// into normalized results, one per accepted panel key. Reserved metadata keys
// are skipped; any remaining key must be a recognized metric id. Point order
// within a series is preserved exactly as received.
func (n *ResultNormalizer) Normalize(id MetricID, raw map[string]json.RawMessage) ([]MetricSeriesResult, error) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		if key == reservedKeyType || key == reservedKeyUIRestrictions {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make([]MetricSeriesResult, 0, len(keys))
	for _, key := range keys {
		if !n.registry.IsKnownMetric(MetricID(key)) {
			return nil, newConfigurationError("%s is not a valid metric", key)
		}

		var p panel
		if err := json.Unmarshal(raw[key], &p); err != nil {
			return nil, newMalformedResultError(id, err)
		}

		result := MetricSeriesResult{
			ID:     MetricID(key),
			Series: make([]Series, 0, len(p.Series)),
		}

		for _, s := range p.Series {
			points, err := normalizePoints(s.Data)
			if err != nil {
				return nil, newMalformedResultError(id, err)
			}
			result.Series = append(result.Series, Series{
				ID:    s.ID,
				Label: s.Label,
				Data:  points,
			})
		}

		results = append(results, result)
	}

	return results, nil
}

// normalizePoints maps [timestamp, value] pairs into data points, preserving
// the backend's emitted order.
func normalizePoints(data [][]*float64) ([]DataPoint, error) {
	points := make([]DataPoint, 0, len(data))
	for i, pair := range data {
		if len(pair) != 2 {
			return nil, fmt.Errorf("data point %d has %d elements, want 2", i, len(pair))
		}
		if pair[0] == nil {
			return nil, fmt.Errorf("data point %d has no timestamp", i)
		}
		points = append(points, DataPoint{
			Timestamp: int64(*pair[0]),
			Value:     pair[1],
		})
	}
	return points, nil
}
