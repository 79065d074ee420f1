package ratelimit

import (
	"os"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (prefix match when it ends with "/")
	Method string        // HTTP method
	Limit  int           // Maximum requests per window; 0 is unlimited
	Window time.Duration // Refill window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	RatePerSecond   float64 // default sustained rate per client
	Burst           int     // default burst per client
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // limiters unused this long are dropped
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Defaults
const (
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTimeout     = time.Hour
)

// NewConfig builds a configuration with the given default rate. A zero rate
// disables limiting. RATE_LIMIT_WHITELIST lists exempt client ids (comma separated).
func NewConfig(ratePerSecond float64, burst int) *Config {
	if burst <= 0 {
		burst = max(1, int(ratePerSecond))
	}
	return &Config{
		Enabled:         ratePerSecond > 0,
		RatePerSecond:   ratePerSecond,
		Burst:           burst,
		CleanupInterval: DefaultCleanupInterval,
		IdleTimeout:     DefaultIdleTimeout,
		Whitelist:       parseList(os.Getenv("RATE_LIMIT_WHITELIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Writes and
// warm-ups trigger extraction of whole pools and are limited more strictly.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/admin/warm", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/auth/token", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
	}
}

// parseList parses a comma-separated list into a set.
func parseList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result[item] = true
		}
	}
	return result
}
