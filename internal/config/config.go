package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig            `yaml:"server"`
	Backend    BackendConfig           `yaml:"backend"`
	Security   SecurityConfig          `yaml:"security"`
	Sources    map[string]SourceConfig `yaml:"sources"`
	RateLimits RateLimitsConfig        `yaml:"rate_limits"`
	Caching    CachingConfig           `yaml:"caching"`
	Watch      WatchConfig             `yaml:"watch"`
	Logging    LoggingConfig           `yaml:"logging"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Addr     string     `yaml:"addr"`
	BasePath string     `yaml:"base_path"`
	CORS     CORSConfig `yaml:"cors"`
}

// CORSConfig represents the CORS configuration
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
	AllowMethods []string `yaml:"allow_methods"`
}

// BackendConfig represents the search backend configuration
type BackendConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// SecurityConfig represents the security configuration
type SecurityConfig struct {
	AuthMode string     `yaml:"auth_mode"`
	OIDC     OIDCConfig `yaml:"oidc"`
}

// OIDCConfig represents the OIDC configuration
type OIDCConfig struct {
	Issuer   string `yaml:"issuer"`
	ClientID string `yaml:"client_id"`
	Audience string `yaml:"audience"`
}

// SourceConfig represents the index aliases and field map for one node type
type SourceConfig struct {
	MetricAlias    string `yaml:"metric_alias"`
	LogAlias       string `yaml:"log_alias"`
	IDField        string `yaml:"id_field"`
	TimestampField string `yaml:"timestamp_field"`
}

// RateLimitsConfig represents the rate limits configuration
type RateLimitsConfig struct {
	MetricsPerMinute int `yaml:"metrics_per_minute"`
}

// CachingConfig represents response caching configuration
type CachingConfig struct {
	MetricsTTL string `yaml:"metrics_ttl"`
}

// WatchConfig represents the live watch configuration
type WatchConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads the configuration from an optional YAML file (INFRASCOPE_CONFIG)
// with environment variable overrides on top of built-in defaults.
func Load() (*Config, error) {
	return loadWithDefaults(os.Getenv("INFRASCOPE_CONFIG"))
}

func loadWithDefaults(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/api/v1",
			CORS: CORSConfig{
				AllowOrigins: []string{"*"},
				AllowMethods: []string{"GET", "POST", "OPTIONS"},
			},
		},
		Backend: BackendConfig{
			URL:     "http://localhost:9200",
			Timeout: "30s",
		},
		Security: SecurityConfig{
			AuthMode: "none",
		},
		Sources: map[string]SourceConfig{
			"host": {
				MetricAlias:    "metricbeat-*",
				LogAlias:       "filebeat-*",
				IDField:        "host.name",
				TimestampField: "@timestamp",
			},
			"pod": {
				MetricAlias:    "metricbeat-*",
				LogAlias:       "filebeat-*",
				IDField:        "kubernetes.pod.uid",
				TimestampField: "@timestamp",
			},
			"container": {
				MetricAlias:    "metricbeat-*",
				LogAlias:       "filebeat-*",
				IDField:        "container.id",
				TimestampField: "@timestamp",
			},
			"awsEC2": {
				MetricAlias:    "metricbeat-*",
				LogAlias:       "filebeat-*",
				IDField:        "cloud.instance.id",
				TimestampField: "@timestamp",
			},
		},
		RateLimits: RateLimitsConfig{
			MetricsPerMinute: 120,
		},
		Caching: CachingConfig{
			MetricsTTL: "15s",
		},
		Watch: WatchConfig{
			RefreshInterval: "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INFRASCOPE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("INFRASCOPE_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("INFRASCOPE_BACKEND_TIMEOUT"); v != "" {
		cfg.Backend.Timeout = v
	}
	if v := os.Getenv("INFRASCOPE_AUTH_MODE"); v != "" {
		cfg.Security.AuthMode = v
	}
	if v := os.Getenv("INFRASCOPE_OIDC_ISSUER"); v != "" {
		cfg.Security.OIDC.Issuer = v
	}
	if v := os.Getenv("INFRASCOPE_OIDC_CLIENT_ID"); v != "" {
		cfg.Security.OIDC.ClientID = v
	}
	if v := os.Getenv("INFRASCOPE_OIDC_AUDIENCE"); v != "" {
		cfg.Security.OIDC.Audience = v
	}
	if v := os.Getenv("INFRASCOPE_CORS_ALLOW_ORIGINS"); v != "" {
		cfg.Server.CORS.AllowOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("INFRASCOPE_RATE_LIMIT_METRICS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimits.MetricsPerMinute = n
		}
	}
	if v := os.Getenv("INFRASCOPE_CACHE_METRICS_TTL"); v != "" {
		cfg.Caching.MetricsTTL = v
	}
	if v := os.Getenv("INFRASCOPE_WATCH_REFRESH_INTERVAL"); v != "" {
		cfg.Watch.RefreshInterval = v
	}
	if v := os.Getenv("INFRASCOPE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INFRASCOPE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks the configuration for required values and consistency.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if _, err := time.ParseDuration(c.Backend.Timeout); err != nil {
		return fmt.Errorf("backend.timeout is invalid: %w", err)
	}

	switch c.Security.AuthMode {
	case "none":
	case "oidc":
		if c.Security.OIDC.Issuer == "" {
			return fmt.Errorf("security.oidc.issuer is required when auth_mode is oidc")
		}
		if c.Security.OIDC.ClientID == "" {
			return fmt.Errorf("security.oidc.client_id is required when auth_mode is oidc")
		}
	default:
		return fmt.Errorf("security.auth_mode must be one of: none, oidc")
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source configuration is required")
	}
	for nodeType, source := range c.Sources {
		if source.MetricAlias == "" || source.LogAlias == "" {
			return fmt.Errorf("source %q must set metric_alias and log_alias", nodeType)
		}
		if source.IDField == "" || source.TimestampField == "" {
			return fmt.Errorf("source %q must set id_field and timestamp_field", nodeType)
		}
	}

	if c.RateLimits.MetricsPerMinute < 0 {
		return fmt.Errorf("rate_limits.metrics_per_minute must not be negative")
	}
	if _, err := time.ParseDuration(c.Caching.MetricsTTL); err != nil {
		return fmt.Errorf("caching.metrics_ttl is invalid: %w", err)
	}
	if _, err := time.ParseDuration(c.Watch.RefreshInterval); err != nil {
		return fmt.Errorf("watch.refresh_interval is invalid: %w", err)
	}

	return nil
}

// MetricsTTL returns the parsed response cache TTL.
func (c *Config) MetricsTTL() time.Duration {
	d, _ := time.ParseDuration(c.Caching.MetricsTTL)
	return d
}

// WatchRefreshInterval returns the parsed watch refresh interval.
func (c *Config) WatchRefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Watch.RefreshInterval)
	return d
}
