package metrics

import "fmt"

// NodeType identifies the kind of infrastructure entity a request targets.
type NodeType string

const (
	NodeTypeHost      NodeType = "host"
	NodeTypePod       NodeType = "pod"
	NodeTypeContainer NodeType = "container"
	NodeTypeAWSEC2    NodeType = "awsEC2"
)

// MetricID identifies one metric in the catalog.
type MetricID string

// NodeIdentifier identifies one node. CloudID is only present for nodes that
// are known to a cloud provider under a separate instance id.
type NodeIdentifier struct {
	NodeID  string `json:"nodeId"`
	CloudID string `json:"cloudId,omitempty"`
}

// SourceFields maps the logical document fields to their concrete names for
// a given node type.
type SourceFields struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

// SourceConfiguration carries the index aliases and field map for a node type.
type SourceConfiguration struct {
	MetricAlias string       `json:"metricAlias"`
	LogAlias    string       `json:"logAlias"`
	Fields      SourceFields `json:"fields"`
}

// TimeRange bounds a query in time. From and To are epoch milliseconds and
// Interval is the caller's bucket-width hint (e.g. "10s", "1m", ">=30s").
type TimeRange struct {
	From     int64  `json:"from"`
	To       int64  `json:"to"`
	Interval string `json:"interval"`
}

// Validate checks the time range invariant.
func (t TimeRange) Validate() error {
	if t.From > t.To {
		return fmt.Errorf("invalid time range: from %d is after to %d", t.From, t.To)
	}
	return nil
}

// MetricRequest is the single input to the aggregation orchestrator. It is
// immutable and constructed per call by the transport layer.
type MetricRequest struct {
	NodeType  NodeType            `json:"nodeType"`
	NodeIDs   NodeIdentifier      `json:"nodeIds"`
	Metrics   []MetricID          `json:"metrics"`
	Timerange TimeRange           `json:"timerange"`
	Source    SourceConfiguration `json:"sourceConfiguration"`
}

// DataPoint is one timestamped sample. Value is nil when the backend emitted
// an empty bucket.
type DataPoint struct {
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"value"`
}

// Series is one named series of data points, in the backend's emitted order.
type Series struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Data  []DataPoint `json:"data"`
}

// MetricSeriesResult is the normalized output unit for one sub-metric. A
// single requested metric id may expand into several of these.
type MetricSeriesResult struct {
	ID     MetricID `json:"id"`
	Series []Series `json:"series"`
}
