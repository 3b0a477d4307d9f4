package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type envConfig struct {
	Enabled         bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	DefaultLimit    int           `envconfig:"RATE_LIMIT_DEFAULT_LIMIT" default:"1000"`
	DefaultWindow   time.Duration `envconfig:"RATE_LIMIT_DEFAULT_WINDOW" default:"1m"`
	CleanupInterval time.Duration `envconfig:"RATE_LIMIT_CLEANUP_INTERVAL" default:"5m"`
	Whitelist       string        `envconfig:"RATE_LIMIT_WHITELIST"`
	Blacklist       string        `envconfig:"RATE_LIMIT_BLACKLIST"`
}

// DefaultConfig returns the configuration used when the environment sets nothing.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	if !env.Enabled {
		return &Config{Enabled: false}, nil
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.DefaultLimit,
		DefaultWindow:   env.DefaultWindow,
		CleanupInterval: env.CleanupInterval,
		Whitelist:       parseIPList(env.Whitelist),
		Blacklist:       parseIPList(env.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}, nil
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model calls
		{Path: "/generate", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/generate/stream", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/drafts/", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/emails/", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},

		// Resume uploads carry a PDF and a model call
		{Path: "/profile/resume", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 2},

		// Profile writes
		{Path: "/profile", Method: http.MethodPut, Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
