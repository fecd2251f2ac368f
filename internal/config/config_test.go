package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:9200", cfg.Backend.URL)
	assert.Equal(t, "none", cfg.Security.AuthMode)
	assert.Contains(t, cfg.Sources, "host")
	assert.Contains(t, cfg.Sources, "awsEC2")
	assert.Equal(t, "cloud.instance.id", cfg.Sources["awsEC2"].IDField)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
backend:
  url: "http://search.internal:9200"
  timeout: "10s"
sources:
  host:
    metric_alias: "metrics-*"
    log_alias: "logs-*"
    id_field: "host.name"
    timestamp_field: "@timestamp"
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadWithDefaults(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://search.internal:9200", cfg.Backend.URL)
	assert.Equal(t, "10s", cfg.Backend.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unmentioned sections keep their defaults.
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "metrics-*", cfg.Sources["host"].MetricAlias)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := loadWithDefaults("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INFRASCOPE_BACKEND_URL", "http://override:9200")
	t.Setenv("INFRASCOPE_AUTH_MODE", "oidc")
	t.Setenv("INFRASCOPE_OIDC_ISSUER", "https://issuer.example.com")
	t.Setenv("INFRASCOPE_OIDC_CLIENT_ID", "infrascope")
	t.Setenv("INFRASCOPE_RATE_LIMIT_METRICS_PER_MINUTE", "30")
	t.Setenv("INFRASCOPE_CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := loadWithDefaults("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://override:9200", cfg.Backend.URL)
	assert.Equal(t, "oidc", cfg.Security.AuthMode)
	assert.Equal(t, 30, cfg.RateLimits.MetricsPerMinute)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORS.AllowOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing backend url",
			mutate:  func(c *Config) { c.Backend.URL = "" },
			wantErr: "backend.url is required",
		},
		{
			name:    "bad backend timeout",
			mutate:  func(c *Config) { c.Backend.Timeout = "soon" },
			wantErr: "backend.timeout is invalid",
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.Security.AuthMode = "basic" },
			wantErr: "auth_mode must be one of",
		},
		{
			name:    "oidc without issuer",
			mutate:  func(c *Config) { c.Security.AuthMode = "oidc" },
			wantErr: "security.oidc.issuer is required",
		},
		{
			name:    "no sources",
			mutate:  func(c *Config) { c.Sources = nil },
			wantErr: "at least one source configuration",
		},
		{
			name: "source without id field",
			mutate: func(c *Config) {
				s := c.Sources["host"]
				s.IDField = ""
				c.Sources["host"] = s
			},
			wantErr: "must set id_field",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimits.MetricsPerMinute = -1 },
			wantErr: "must not be negative",
		},
		{
			name:    "bad cache ttl",
			mutate:  func(c *Config) { c.Caching.MetricsTTL = "forever" },
			wantErr: "caching.metrics_ttl is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParsedDurations(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 15*time.Second, cfg.MetricsTTL())
	assert.Equal(t, 10*time.Second, cfg.WatchRefreshInterval())
}
