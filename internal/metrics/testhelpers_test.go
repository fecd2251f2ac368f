package metrics

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/search"
)

// fakeSearchClient implements search.Client with function fields and records
// every call for fan-out assertions.
type fakeSearchClient struct {
	mu               sync.Mutex
	searchCalls      []searchCall
	metricQueryCalls []search.MetricQueryRequest

	searchFn      func(indexPattern string, body map[string]interface{}) (*search.Response, error)
	metricQueryFn func(req search.MetricQueryRequest) (map[string]json.RawMessage, error)
}

type searchCall struct {
	indexPattern string
	body         map[string]interface{}
}

func (f *fakeSearchClient) Search(ctx context.Context, indexPattern string, body map[string]interface{}) (*search.Response, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, searchCall{indexPattern: indexPattern, body: body})
	f.mu.Unlock()

	if f.searchFn != nil {
		return f.searchFn(indexPattern, body)
	}
	return &search.Response{}, nil
}

func (f *fakeSearchClient) RunMetricQuery(ctx context.Context, req search.MetricQueryRequest) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	f.metricQueryCalls = append(f.metricQueryCalls, req)
	f.mu.Unlock()

	if f.metricQueryFn != nil {
		return f.metricQueryFn(req)
	}
	return map[string]json.RawMessage{}, nil
}

func (f *fakeSearchClient) searchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

func (f *fakeSearchClient) metricQueryCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.metricQueryCalls)
}

// bodyContains reports whether the JSON encoding of a metric query body
// mentions the given substring. Tests use it to tell models apart.
func bodyContains(req search.MetricQueryRequest, substr string) bool {
	data, err := json.Marshal(req.Body)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), substr)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testCatalog() *Catalog {
	catalog, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

func float64Ptr(v float64) *float64 {
	return &v
}
