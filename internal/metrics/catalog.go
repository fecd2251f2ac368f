package metrics

import (
	"fmt"
	"sort"
)

// Catalog is the sealed registry of metric model builders, keyed by node type
// and metric id. It is immutable after construction and safe for concurrent
// reads.
type Catalog struct {
	builders map[NodeType]map[MetricID]ModelBuilder
	known    map[MetricID]struct{}
}

// NewCatalog builds a catalog from the given builders and validates every
// entry: each builder must produce a model whose id matches its registry key,
// cloud-scoped models must declare a match field, and every model must carry
// a query body.
func NewCatalog(builders map[NodeType]map[MetricID]ModelBuilder) (*Catalog, error) {
	known := make(map[MetricID]struct{})

	probe := ModelOptions{
		IndexPattern: "metrics-*",
		TimeField:    "@timestamp",
		Interval:     ">=1m",
	}

	for nodeType, entries := range builders {
		for id, build := range entries {
			if build == nil {
				return nil, fmt.Errorf("metric model %s/%s has no builder", id, nodeType)
			}

			model := build(probe)
			if model.ID != id {
				return nil, fmt.Errorf("metric model %s/%s declares mismatched id %q", id, nodeType, model.ID)
			}
			if model.Scope == ScopeCloud && model.MatchField == "" {
				return nil, fmt.Errorf("cloud-scoped metric model %s/%s declares no match field", id, nodeType)
			}
			if len(model.Body) == 0 {
				return nil, fmt.Errorf("metric model %s/%s has an empty query body", id, nodeType)
			}

			known[id] = struct{}{}
		}
	}

	return &Catalog{builders: builders, known: known}, nil
}

// DefaultCatalog builds the catalog of built-in metric models.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(defaultBuilders())
}

// Lookup resolves the builder for a metric id and node type.
func (c *Catalog) Lookup(nodeType NodeType, id MetricID) (ModelBuilder, error) {
	entries, ok := c.builders[nodeType]
	if !ok {
		return nil, newConfigurationError("unknown metric model for %s/%s", id, nodeType)
	}

	build, ok := entries[id]
	if !ok {
		return nil, newConfigurationError("unknown metric model for %s/%s", id, nodeType)
	}

	return build, nil
}

// IsKnownMetric reports whether id is registered for any node type. The
// normalizer uses this to reject panel keys the catalog never emits.
func (c *Catalog) IsKnownMetric(id MetricID) bool {
	_, ok := c.known[id]
	return ok
}

// Metrics returns the sorted metric ids registered for a node type.
func (c *Catalog) Metrics(nodeType NodeType) []MetricID {
	entries := c.builders[nodeType]
	ids := make([]MetricID, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func defaultBuilders() map[NodeType]map[MetricID]ModelBuilder {
	return map[NodeType]map[MetricID]ModelBuilder{
		NodeTypeHost: {
			"cpu":     hostCPU,
			"load":    hostLoad,
			"memory":  hostMemory,
			"network": hostNetwork,
			"diskio":  hostDiskIO,
		},
		NodeTypePod: {
			"cpu":     podCPU,
			"memory":  podMemory,
			"network": podNetwork,
		},
		NodeTypeContainer: {
			"cpu":     containerCPU,
			"memory":  containerMemory,
			"network": containerNetwork,
			"diskio":  containerDiskIO,
		},
		NodeTypeAWSEC2: {
			"cpuUtilization": awsEC2CPUUtilization,
			"networkTraffic": awsEC2NetworkTraffic,
			"diskioBytes":    awsEC2DiskIOBytes,
		},
	}
}

func hostCPU(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "cpu",
		Scope:        ScopeStandalone,
		Requires:     []string{"system.cpu"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("user", "avg", "system.cpu.user.norm.pct"),
			series("system", "avg", "system.cpu.system.norm.pct"),
		),
	}
}

func hostLoad(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "load",
		Scope:        ScopeStandalone,
		Requires:     []string{"system.load"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("load_1m", "avg", "system.load.1"),
			series("load_5m", "avg", "system.load.5"),
			series("load_15m", "avg", "system.load.15"),
		),
	}
}

func hostMemory(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "memory",
		Scope:        ScopeStandalone,
		Requires:     []string{"system.memory"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("used", "avg", "system.memory.actual.used.pct"),
		),
	}
}

func hostNetwork(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "network",
		Scope:        ScopeStandalone,
		Requires:     []string{"system.network"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			rateSeries("rx", "system.network.in.bytes"),
			rateSeries("tx", "system.network.out.bytes"),
		),
	}
}

func hostDiskIO(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "diskio",
		Scope:        ScopeStandalone,
		Requires:     []string{"system.diskio"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			rateSeries("read", "system.diskio.read.bytes"),
			rateSeries("write", "system.diskio.write.bytes"),
		),
	}
}

func podCPU(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "cpu",
		Scope:        ScopeStandalone,
		Requires:     []string{"kubernetes.pod"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("cpu", "avg", "kubernetes.pod.cpu.usage.node.pct"),
		),
	}
}

func podMemory(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "memory",
		Scope:        ScopeStandalone,
		Requires:     []string{"kubernetes.pod"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("memory", "avg", "kubernetes.pod.memory.usage.node.pct"),
		),
	}
}

func podNetwork(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "network",
		Scope:        ScopeStandalone,
		Requires:     []string{"kubernetes.pod"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			rateSeries("rx", "kubernetes.pod.network.rx.bytes"),
			rateSeries("tx", "kubernetes.pod.network.tx.bytes"),
		),
	}
}

func containerCPU(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "cpu",
		Scope:        ScopeStandalone,
		Requires:     []string{"docker.cpu"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("cpu", "avg", "docker.cpu.total.pct"),
		),
	}
}

func containerMemory(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "memory",
		Scope:        ScopeStandalone,
		Requires:     []string{"docker.memory"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("memory", "avg", "docker.memory.usage.pct"),
		),
	}
}

func containerNetwork(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "network",
		Scope:        ScopeStandalone,
		Requires:     []string{"docker.network"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			rateSeries("rx", "docker.network.inbound.bytes"),
			rateSeries("tx", "docker.network.outbound.bytes"),
		),
	}
}

func containerDiskIO(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "diskio",
		Scope:        ScopeStandalone,
		Requires:     []string{"docker.diskio"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			rateSeries("read", "docker.diskio.read.bytes"),
			rateSeries("write", "docker.diskio.write.bytes"),
		),
	}
}

func awsEC2CPUUtilization(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "cpuUtilization",
		Scope:        ScopeCloud,
		MatchField:   "cloud.instance.id",
		Requires:     []string{"aws.ec2"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("cpu", "avg", "aws.ec2.cpu.total.pct"),
		),
	}
}

func awsEC2NetworkTraffic(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "networkTraffic",
		Scope:        ScopeCloud,
		MatchField:   "cloud.instance.id",
		Requires:     []string{"aws.ec2"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("rx", "avg", "aws.ec2.network.in.bytes_per_sec"),
			series("tx", "avg", "aws.ec2.network.out.bytes_per_sec"),
		),
	}
}

func awsEC2DiskIOBytes(opts ModelOptions) QueryModel {
	return QueryModel{
		ID:           "diskioBytes",
		Scope:        ScopeCloud,
		MatchField:   "cloud.instance.id",
		Requires:     []string{"aws.ec2"},
		IndexPattern: opts.IndexPattern,
		TimeField:    opts.TimeField,
		Interval:     opts.Interval,
		Body: seriesBody(
			series("read", "avg", "aws.ec2.diskio.read.bytes_per_sec"),
			series("write", "avg", "aws.ec2.diskio.write.bytes_per_sec"),
		),
	}
}
