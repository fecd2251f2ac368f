package search

import (
	"context"
	"encoding/json"
)

// Client is the uniform surface for talking to the time-series search backend.
// The backend is treated as opaque: it accepts raw query bodies and metric
// query requests, and answers with hit counts, aggregations and panel maps.
type Client interface {
	// Search issues a raw search against the given index pattern.
	Search(ctx context.Context, indexPattern string, body map[string]interface{}) (*Response, error)

	// RunMetricQuery evaluates a templated metric query and returns the raw
	// panel map keyed by sub-metric id. Reserved metadata keys may be present
	// alongside the panels.
	RunMetricQuery(ctx context.Context, req MetricQueryRequest) (map[string]json.RawMessage, error)
}

// Response represents the subset of a search response this service consumes.
type Response struct {
	TotalHits    int64                      `json:"totalHits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// TermFilter matches documents whose field equals the given value exactly.
type TermFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// MetricQueryRequest carries one fully-built metric query to the backend.
type MetricQueryRequest struct {
	IndexPattern string                 `json:"indexPattern"`
	TimeField    string                 `json:"timeField"`
	Interval     string                 `json:"interval"`
	From         int64                  `json:"from"`
	To           int64                  `json:"to"`
	Filters      []TermFilter           `json:"filters"`
	Body         map[string]interface{} `json:"body"`
}
