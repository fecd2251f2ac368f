package metrics

// ModelScope selects how a model identifies the node it queries for.
type ModelScope string

const (
	// ScopeStandalone models filter on the node's own id field.
	ScopeStandalone ModelScope = "standalone"

	// ScopeCloud models filter on a cloud-provider instance id and are
	// invalid for requests that do not carry one.
	ScopeCloud ModelScope = "cloud"
)

// QueryModel is one generated metric query, bound to a metric id, time field,
// index pattern and interval. The body is a template; the interval carried on
// the model fills its interval slot at dispatch time.
type QueryModel struct {
	ID           MetricID
	Scope        ModelScope
	MatchField   string
	Requires     []string
	IndexPattern string
	TimeField    string
	Interval     string
	Body         map[string]interface{}
}

// ModelOptions carries the request-scoped inputs substituted into a model
// template.
type ModelOptions struct {
	IndexPattern string
	TimeField    string
	Interval     string
}

// ModelBuilder generates a query model from request-scoped options. Builders
// are pure functions and safe for concurrent use.
type ModelBuilder func(opts ModelOptions) QueryModel

// seriesBody assembles a timeseries panel template from series definitions.
func seriesBody(series ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":   "timeseries",
		"series": series,
	}
}

// series defines one aggregated series over a document field.
func series(id, aggregation, field string) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
		"metrics": []map[string]interface{}{
			{"type": aggregation, "field": field},
		},
	}
}

// rateSeries defines one series derived from a monotonic counter field.
func rateSeries(id, field string) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
		"metrics": []map[string]interface{}{
			{"type": "max", "field": field},
			{"type": "derivative", "unit": "1s"},
			{"type": "positive_only"},
		},
	}
}
