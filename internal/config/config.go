// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/talent-match/internal/comparison"
	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/ranking"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MATCH"

// Defaults
const (
	DefaultTopK                 = ranking.DefaultTopK
	DefaultMaxHighlightSkills   = ranking.DefaultMaxHighlightSkills
	DefaultNotableThreshold     = ranking.DefaultNotableThreshold
	DefaultMaxSkillGaps         = comparison.DefaultMaxSkillGaps
	DefaultMaxHeatmapSkills     = 10
	DefaultPartialCredit        = ranking.DefaultPartialCredit
	DefaultEducationTierPenalty = ranking.DefaultEducationPenalty
	DefaultPort                 = 8080
	DefaultExtractWorkers       = 8
	DefaultCacheTTL             = 24 * time.Hour
	DefaultRateLimit            = 10.0
	DefaultRateBurst            = 20
)

// Config represents the server and CLI configuration. Values come from an
// optional YAML or JSON file and MATCH_-prefixed environment variables.
type Config struct {
	// Scoring
	Weights              ranking.Weights `mapstructure:",squash"`
	TopK                 int             `mapstructure:"top_k"`
	MaxHighlightSkills   int             `mapstructure:"max_highlight_skills"`
	NotableThreshold     float64         `mapstructure:"notable_threshold"`
	MaxSkillGaps         int             `mapstructure:"max_skill_gaps"`
	MaxHeatmapSkills     int             `mapstructure:"max_heatmap_skills"`
	PartialCredit        float64         `mapstructure:"partial_credit"`
	EducationTierPenalty float64         `mapstructure:"education_tier_penalty"`
	TaxonomyPath         string          `mapstructure:"taxonomy_path"`

	// Embeddings
	EmbeddingProvider string        `mapstructure:"embedding_provider"`
	EmbeddingModel    string        `mapstructure:"embedding_model"`
	EmbeddingDim      int           `mapstructure:"embedding_dim"`
	EmbeddingTimeout  time.Duration `mapstructure:"embedding_timeout"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`

	// Storage
	DatabaseURL string        `mapstructure:"database_url"`
	RedisURL    string        `mapstructure:"redis_url"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`

	// Server
	Port           int               `mapstructure:"port"`
	RateLimit      float64           `mapstructure:"rate_limit"` // requests per second per client; 0 disables
	RateBurst      int               `mapstructure:"rate_burst"`
	APIClients     map[string]string `mapstructure:"api_clients"` // client id -> bcrypt hash of its secret
	ExtractWorkers int               `mapstructure:"extract_workers"`
	WarmOnWrite    bool              `mapstructure:"warm_on_write"`

	// Logging
	LogJSON bool `mapstructure:"log_json"`
	Debug   bool `mapstructure:"debug"`
}

// Default returns the default configuration.
func Default() Config {
	embedding := llm.DefaultConfig()
	return Config{
		Weights:              ranking.DefaultWeights(),
		TopK:                 DefaultTopK,
		MaxHighlightSkills:   DefaultMaxHighlightSkills,
		NotableThreshold:     DefaultNotableThreshold,
		MaxSkillGaps:         DefaultMaxSkillGaps,
		MaxHeatmapSkills:     DefaultMaxHeatmapSkills,
		PartialCredit:        DefaultPartialCredit,
		EducationTierPenalty: DefaultEducationTierPenalty,
		EmbeddingProvider:    string(embedding.Provider),
		EmbeddingModel:       embedding.Model,
		EmbeddingDim:         embedding.Dimension,
		EmbeddingTimeout:     embedding.Timeout,
		CacheTTL:             DefaultCacheTTL,
		Port:                 DefaultPort,
		RateLimit:            DefaultRateLimit,
		RateBurst:            DefaultRateBurst,
		ExtractWorkers:       DefaultExtractWorkers,
	}
}

// Load reads configuration from path (optional) and the environment, then validates it.
// DATABASE_URL, REDIS_URL and GEMINI_API_KEY are accepted without the prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, fallback := range map[string]string{
		"database_url":   "DATABASE_URL",
		"redis_url":      "REDIS_URL",
		"gemini_api_key": "GEMINI_API_KEY",
	} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), fallback); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", fallback, err)
		}
	}
	// Model and dimension default per provider after unmarshalling
	for _, key := range []string{"embedding_model", "embedding_dim"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillEmbeddingDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("skills_weight", d.Weights.Skills)
	v.SetDefault("semantic_weight", d.Weights.Semantic)
	v.SetDefault("experience_weight", d.Weights.Experience)
	v.SetDefault("education_weight", d.Weights.Education)
	v.SetDefault("top_k", d.TopK)
	v.SetDefault("max_highlight_skills", d.MaxHighlightSkills)
	v.SetDefault("notable_threshold", d.NotableThreshold)
	v.SetDefault("max_skill_gaps", d.MaxSkillGaps)
	v.SetDefault("max_heatmap_skills", d.MaxHeatmapSkills)
	v.SetDefault("partial_credit", d.PartialCredit)
	v.SetDefault("education_tier_penalty", d.EducationTierPenalty)
	v.SetDefault("taxonomy_path", d.TaxonomyPath)
	v.SetDefault("embedding_provider", d.EmbeddingProvider)
	v.SetDefault("embedding_timeout", d.EmbeddingTimeout)
	v.SetDefault("gemini_api_key", d.GeminiAPIKey)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("redis_url", d.RedisURL)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("port", d.Port)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("rate_burst", d.RateBurst)
	v.SetDefault("api_clients", map[string]string{})
	v.SetDefault("extract_workers", d.ExtractWorkers)
	v.SetDefault("warm_on_write", d.WarmOnWrite)
	v.SetDefault("log_json", d.LogJSON)
	v.SetDefault("debug", d.Debug)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate numeric ranges
	if c.TopK < 0 {
		return fmt.Errorf("config error: 'top_k' must be non-negative")
	}
	if c.MaxHighlightSkills < 0 {
		return fmt.Errorf("config error: 'max_highlight_skills' must be non-negative")
	}
	if c.MaxSkillGaps < 0 {
		return fmt.Errorf("config error: 'max_skill_gaps' must be non-negative")
	}
	if c.MaxHeatmapSkills < 0 {
		return fmt.Errorf("config error: 'max_heatmap_skills' must be non-negative")
	}
	for name, v := range map[string]float64{
		"notable_threshold":      c.NotableThreshold,
		"partial_credit":         c.PartialCredit,
		"education_tier_penalty": c.EducationTierPenalty,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config error: '%s' must be between 0 and 1, got %v", name, v)
		}
	}

	switch llm.Provider(c.EmbeddingProvider) {
	case llm.ProviderHashing:
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: 'gemini_api_key' is required for the gemini embedding provider")
		}
		// The Gemini API returns the model's fixed output size
		if (c.EmbeddingModel == "" || c.EmbeddingModel == llm.DefaultGeminiModel) && c.EmbeddingDim != llm.DefaultGeminiDimension {
			return fmt.Errorf("config error: 'embedding_dim' must be %d for %s, got %d",
				llm.DefaultGeminiDimension, llm.DefaultGeminiModel, c.EmbeddingDim)
		}
	default:
		return fmt.Errorf("config error: unknown 'embedding_provider' %q", c.EmbeddingProvider)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("config error: 'embedding_dim' must be positive")
	}
	if c.EmbeddingTimeout <= 0 {
		return fmt.Errorf("config error: 'embedding_timeout' must be positive")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("config error: 'rate_limit' and 'rate_burst' must be non-negative")
	}
	if c.ExtractWorkers < 1 {
		return fmt.Errorf("config error: 'extract_workers' must be at least 1")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty string and zero numeric
// fields filled from defaults. It is used to apply config file values under CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.TaxonomyPath == "" {
		result.TaxonomyPath = defaults.TaxonomyPath
	}
	if result.EmbeddingProvider == "" {
		result.EmbeddingProvider = defaults.EmbeddingProvider
	}
	// A different provider does not inherit the other provider's model and dimension
	if result.EmbeddingProvider != defaults.EmbeddingProvider {
		result.fillEmbeddingDefaults()
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}

	// Int and duration fields: use default if zero
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.MaxHighlightSkills == 0 {
		result.MaxHighlightSkills = defaults.MaxHighlightSkills
	}
	if result.MaxSkillGaps == 0 {
		result.MaxSkillGaps = defaults.MaxSkillGaps
	}
	if result.MaxHeatmapSkills == 0 {
		result.MaxHeatmapSkills = defaults.MaxHeatmapSkills
	}
	if result.EmbeddingDim == 0 {
		result.EmbeddingDim = defaults.EmbeddingDim
	}
	if result.EmbeddingTimeout == 0 {
		result.EmbeddingTimeout = defaults.EmbeddingTimeout
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}
	if result.ExtractWorkers == 0 {
		result.ExtractWorkers = defaults.ExtractWorkers
	}
	if result.APIClients == nil {
		result.APIClients = defaults.APIClients
	}

	// Float fields
	if result.Weights == (ranking.Weights{}) {
		result.Weights = defaults.Weights
	}
	if result.NotableThreshold == 0 {
		result.NotableThreshold = defaults.NotableThreshold
	}
	if result.PartialCredit == 0 {
		result.PartialCredit = defaults.PartialCredit
	}
	if result.EducationTierPenalty == 0 {
		result.EducationTierPenalty = defaults.EducationTierPenalty
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// fillEmbeddingDefaults sets an unset model and dimension from the provider defaults.
func (c *Config) fillEmbeddingDefaults() {
	d := llm.DefaultConfig()
	if llm.Provider(c.EmbeddingProvider) == llm.ProviderGemini {
		d = llm.DefaultGeminiConfig()
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = d.Model
	}
	if c.EmbeddingDim == 0 {
		c.EmbeddingDim = d.Dimension
	}
}

// LLM returns the embedding configuration.
func (c *Config) LLM() *llm.Config {
	return &llm.Config{
		Provider:  llm.Provider(c.EmbeddingProvider),
		Model:     c.EmbeddingModel,
		Dimension: c.EmbeddingDim,
		Timeout:   c.EmbeddingTimeout,
	}
}

// RankingOptions returns the ranker options.
func (c *Config) RankingOptions() ranking.Options {
	return ranking.Options{
		TopK:               c.TopK,
		MaxHighlightSkills: c.MaxHighlightSkills,
		NotableThreshold:   c.NotableThreshold,
	}
}

// ComparisonOptions returns the comparison builder options.
func (c *Config) ComparisonOptions() comparison.Options {
	return comparison.Options{
		MaxSkillGaps:     c.MaxSkillGaps,
		PartialCredit:    c.PartialCredit,
		MaxHeatmapSkills: c.MaxHeatmapSkills,
	}
}

// Scorer builds the scorer from the configured weights and penalty.
func (c *Config) Scorer() (*ranking.Scorer, error) {
	return ranking.NewScorer(c.Weights, c.EducationTierPenalty)
}
