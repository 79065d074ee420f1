// Package llm provides embedding model configuration and clients for the
// semantic part of feature extraction.
package llm

import (
	"time"

	"github.com/jonathan/talent-match/internal/features"
)

// Provider represents an embedding provider
type Provider string

// Provider constants define supported embedding providers
const (
	// ProviderHashing is the local feature-hashing embedder (no network)
	ProviderHashing Provider = "hashing"
	// ProviderGemini is the Google Gemini embedding API
	ProviderGemini Provider = "gemini"
)

const (
	// DefaultGeminiModel is the Gemini embedding model used when none is configured
	DefaultGeminiModel = "text-embedding-004"
	// DefaultGeminiDimension is the output size of DefaultGeminiModel
	DefaultGeminiDimension = 768
	// DefaultTimeout bounds a single embedding call
	DefaultTimeout = 5 * time.Second
)

// Config holds the embedding configuration for the application
type Config struct {
	Provider  Provider
	Model     string
	Dimension int
	Timeout   time.Duration
}

// DefaultConfig returns the default configuration (local hashing embedder)
func DefaultConfig() *Config {
	return &Config{
		Provider:  ProviderHashing,
		Dimension: features.DefaultDimension,
		Timeout:   DefaultTimeout,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Model:     DefaultGeminiModel,
		Dimension: DefaultGeminiDimension,
		Timeout:   DefaultTimeout,
	}
}

// WithModel returns a new Config with a specific model and dimension
func (c *Config) WithModel(model string, dimension int) *Config {
	newConfig := *c
	newConfig.Model = model
	newConfig.Dimension = dimension
	return &newConfig
}

// normalized fills zero values from the provider defaults.
func (c *Config) normalized() *Config {
	var defaults *Config
	if c.Provider == ProviderGemini {
		defaults = DefaultGeminiConfig()
	} else {
		defaults = DefaultConfig()
	}
	out := *c
	if out.Provider == "" {
		out.Provider = defaults.Provider
	}
	if out.Model == "" {
		out.Model = defaults.Model
	}
	if out.Dimension <= 0 {
		out.Dimension = defaults.Dimension
	}
	if out.Timeout <= 0 {
		out.Timeout = defaults.Timeout
	}
	return &out
}
