package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLookup(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name     string
		nodeType NodeType
		id       MetricID
		scope    ModelScope
	}{
		{name: "host cpu", nodeType: NodeTypeHost, id: "cpu", scope: ScopeStandalone},
		{name: "host network", nodeType: NodeTypeHost, id: "network", scope: ScopeStandalone},
		{name: "pod memory", nodeType: NodeTypePod, id: "memory", scope: ScopeStandalone},
		{name: "container diskio", nodeType: NodeTypeContainer, id: "diskio", scope: ScopeStandalone},
		{name: "ec2 cpu utilization", nodeType: NodeTypeAWSEC2, id: "cpuUtilization", scope: ScopeCloud},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build, err := catalog.Lookup(tt.nodeType, tt.id)
			require.NoError(t, err)

			model := build(ModelOptions{
				IndexPattern: "metricbeat-*",
				TimeField:    "@timestamp",
				Interval:     "1m",
			})
			assert.Equal(t, tt.id, model.ID)
			assert.Equal(t, tt.scope, model.Scope)
			assert.Equal(t, "metricbeat-*", model.IndexPattern)
			assert.Equal(t, "@timestamp", model.TimeField)
			assert.Equal(t, "1m", model.Interval)
			assert.NotEmpty(t, model.Requires)
			assert.NotEmpty(t, model.Body)
			if tt.scope == ScopeCloud {
				assert.NotEmpty(t, model.MatchField)
			}
		})
	}
}

func TestCatalogLookupUnknown(t *testing.T) {
	catalog := testCatalog()

	t.Run("unknown metric id", func(t *testing.T) {
		_, err := catalog.Lookup(NodeTypeHost, "gpu")
		require.Error(t, err)
		assert.Equal(t, ErrKindConfiguration, KindOf(err))
		assert.Contains(t, err.Error(), "unknown metric model for gpu/host")
	})

	t.Run("unknown node type", func(t *testing.T) {
		_, err := catalog.Lookup(NodeType("vm"), "cpu")
		require.Error(t, err)
		assert.Equal(t, ErrKindConfiguration, KindOf(err))
		assert.Contains(t, err.Error(), "cpu/vm")
	})
}

func TestNewCatalogValidation(t *testing.T) {
	valid := func(opts ModelOptions) QueryModel {
		return QueryModel{
			ID:    "cpu",
			Scope: ScopeStandalone,
			Body:  seriesBody(series("cpu", "avg", "system.cpu.total.pct")),
		}
	}

	tests := []struct {
		name     string
		builders map[NodeType]map[MetricID]ModelBuilder
		wantErr  string
	}{
		{
			name: "valid",
			builders: map[NodeType]map[MetricID]ModelBuilder{
				NodeTypeHost: {"cpu": valid},
			},
		},
		{
			name: "nil builder",
			builders: map[NodeType]map[MetricID]ModelBuilder{
				NodeTypeHost: {"cpu": nil},
			},
			wantErr: "no builder",
		},
		{
			name: "mismatched id",
			builders: map[NodeType]map[MetricID]ModelBuilder{
				NodeTypeHost: {"memory": valid},
			},
			wantErr: "mismatched id",
		},
		{
			name: "cloud scope without match field",
			builders: map[NodeType]map[MetricID]ModelBuilder{
				NodeTypeHost: {"cpu": func(opts ModelOptions) QueryModel {
					return QueryModel{
						ID:    "cpu",
						Scope: ScopeCloud,
						Body:  seriesBody(series("cpu", "avg", "aws.ec2.cpu.total.pct")),
					}
				}},
			},
			wantErr: "no match field",
		},
		{
			name: "empty body",
			builders: map[NodeType]map[MetricID]ModelBuilder{
				NodeTypeHost: {"cpu": func(opts ModelOptions) QueryModel {
					return QueryModel{ID: "cpu", Scope: ScopeStandalone}
				}},
			},
			wantErr: "empty query body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := NewCatalog(tt.builders)
			if tt.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, catalog)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogIsKnownMetric(t *testing.T) {
	catalog := testCatalog()

	assert.True(t, catalog.IsKnownMetric("cpu"))
	assert.True(t, catalog.IsKnownMetric("cpuUtilization"))
	assert.False(t, catalog.IsKnownMetric("gpu"))
	assert.False(t, catalog.IsKnownMetric(""))
}

func TestCatalogMetrics(t *testing.T) {
	catalog := testCatalog()

	assert.Equal(t, []MetricID{"cpu", "diskio", "load", "memory", "network"}, catalog.Metrics(NodeTypeHost))
	assert.Equal(t, []MetricID{"cpu", "memory", "network"}, catalog.Metrics(NodeTypePod))
	assert.Empty(t, catalog.Metrics(NodeType("vm")))
}
