package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/telemetry"
)

// HTTPClient talks JSON over HTTP to the search backend.
type HTTPClient struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// HTTPConfig represents search backend client configuration.
type HTTPConfig struct {
	URL     string
	Timeout string
}

// searchResponse mirrors the backend's search envelope.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// NewHTTPClient creates a new search backend client.
func NewHTTPClient(logger *zap.Logger, config HTTPConfig) (*HTTPClient, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration: %w", err)
	}

	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	return &HTTPClient{
		logger:  logger,
		baseURL: config.URL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Search issues a raw search against the given index pattern.
func (c *HTTPClient) Search(ctx context.Context, indexPattern string, body map[string]interface{}) (*Response, error) {
	endpoint := fmt.Sprintf("%s/%s/_search", c.baseURL, url.PathEscape(indexPattern))

	var decoded searchResponse
	if err := c.post(ctx, "search", endpoint, body, &decoded); err != nil {
		return nil, err
	}

	return &Response{
		TotalHits:    decoded.Hits.Total.Value,
		Aggregations: decoded.Aggregations,
	}, nil
}

// RunMetricQuery evaluates a templated metric query and returns the raw panel map.
func (c *HTTPClient) RunMetricQuery(ctx context.Context, req MetricQueryRequest) (map[string]json.RawMessage, error) {
	endpoint := c.baseURL + "/api/metrics/vis/data"

	var panels map[string]json.RawMessage
	if err := c.post(ctx, "metric_query", endpoint, req, &panels); err != nil {
		return nil, err
	}

	return panels, nil
}

// post sends a JSON request body and decodes the JSON response into out.
func (c *HTTPClient) post(ctx context.Context, operation, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	c.logger.Debug("Querying search backend",
		zap.String("operation", operation),
		zap.String("endpoint", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	telemetry.RecordBackendRequest(operation, err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to query search backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("search backend returned status %d: %s", resp.StatusCode, string(data))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal backend response: %w", err)
	}

	return nil
}
