// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/prompt-optimizer/internal/llm"
)

// Environment variables read by ApplyEnv
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvModel       = "PROMPT_OPTIMIZER_MODEL"
)

// Defaults applied by MergeWithDefaults
const (
	DefaultCacheSize       = 512
	DefaultCacheTTL        = time.Hour
	DefaultListLimit       = 20
	DefaultBatchConcurrent = 4
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, the environment or CLI flags.
type Config struct {
	// Identity
	UserID string `json:"user_id,omitempty"` // Owner of created records

	// AI
	APIKey          string   `json:"api_key,omitempty"`           // Gemini API key
	Model           string   `json:"model,omitempty"`             // Single model for every tier
	LiteModel       string   `json:"lite_model,omitempty"`        // Model for detail extraction
	StandardModel   string   `json:"standard_model,omitempty"`    // Model for questions and quick rewrites
	AdvancedModel   string   `json:"advanced_model,omitempty"`    // Model for premium builds
	Temperature     *float32 `json:"temperature,omitempty"`       // Sampling temperature; nil uses the default, 0 is allowed
	MaxOutputTokens int32    `json:"max_output_tokens,omitempty"` // Response token cap

	// Gateway
	MaxAttempts       int     `json:"max_attempts,omitempty"`        // Attempts per AI call
	AttemptTimeoutSec int     `json:"attempt_timeout_sec,omitempty"` // Timeout per attempt
	BaseBackoffMs     int     `json:"base_backoff_ms,omitempty"`     // First retry wait
	MaxBackoffMs      int     `json:"max_backoff_ms,omitempty"`      // Retry wait cap
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"` // Outbound AI throttle; 0 disables
	Burst             int     `json:"burst,omitempty"`               // Throttle burst

	// Caches
	CacheSize   int `json:"cache_size,omitempty"`    // Entries per cache
	CacheTTLSec int `json:"cache_ttl_sec,omitempty"` // Entry lifetime

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty uses memory

	// Behavior
	Verbose         bool `json:"verbose,omitempty"`          // Human-readable output and debug logs
	ListLimit       int  `json:"list_limit,omitempty"`       // Default page size of listings
	BatchConcurrent int  `json:"batch_concurrent,omitempty"` // Parallel quick optimizations in batch
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"max_output_tokens", float64(c.MaxOutputTokens)},
		{"max_attempts", float64(c.MaxAttempts)},
		{"attempt_timeout_sec", float64(c.AttemptTimeoutSec)},
		{"base_backoff_ms", float64(c.BaseBackoffMs)},
		{"max_backoff_ms", float64(c.MaxBackoffMs)},
		{"requests_per_second", c.RequestsPerSecond},
		{"burst", float64(c.Burst)},
		{"cache_size", float64(c.CacheSize)},
		{"cache_ttl_sec", float64(c.CacheTTLSec)},
		{"list_limit", float64(c.ListLimit)},
		{"batch_concurrent", float64(c.BatchConcurrent)},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", f.name)
		}
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.MaxBackoffMs > 0 && c.BaseBackoffMs > c.MaxBackoffMs {
		return fmt.Errorf("config error: 'base_backoff_ms' exceeds 'max_backoff_ms'")
	}
	if c.Model != "" && (c.LiteModel != "" || c.StandardModel != "" || c.AdvancedModel != "") {
		return fmt.Errorf("config error: 'model' and per-tier models are mutually exclusive")
	}
	return nil
}

// Defaults returns the built-in configuration
func Defaults() Config {
	gw := llm.DefaultGatewayConfig()
	return Config{
		Temperature:       Float32(llm.DefaultTemperature),
		MaxOutputTokens:   llm.DefaultMaxOutputTokens,
		MaxAttempts:       gw.MaxAttempts,
		AttemptTimeoutSec: int(gw.AttemptTimeout / time.Second),
		BaseBackoffMs:     int(gw.BaseBackoff / time.Millisecond),
		MaxBackoffMs:      int(gw.MaxBackoff / time.Millisecond),
		CacheSize:         DefaultCacheSize,
		CacheTTLSec:       int(DefaultCacheTTL / time.Second),
		ListLimit:         DefaultListLimit,
		BatchConcurrent:   DefaultBatchConcurrent,
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.LiteModel == "" {
		result.LiteModel = defaults.LiteModel
	}
	if result.StandardModel == "" {
		result.StandardModel = defaults.StandardModel
	}
	if result.AdvancedModel == "" {
		result.AdvancedModel = defaults.AdvancedModel
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.Temperature == nil {
		result.Temperature = defaults.Temperature
	}
	if result.MaxOutputTokens == 0 {
		result.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.AttemptTimeoutSec == 0 {
		result.AttemptTimeoutSec = defaults.AttemptTimeoutSec
	}
	if result.BaseBackoffMs == 0 {
		result.BaseBackoffMs = defaults.BaseBackoffMs
	}
	if result.MaxBackoffMs == 0 {
		result.MaxBackoffMs = defaults.MaxBackoffMs
	}
	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if result.Burst == 0 {
		result.Burst = defaults.Burst
	}
	if result.CacheSize == 0 {
		result.CacheSize = defaults.CacheSize
	}
	if result.CacheTTLSec == 0 {
		result.CacheTTLSec = defaults.CacheTTLSec
	}
	if result.ListLimit == 0 {
		result.ListLimit = defaults.ListLimit
	}
	if result.BatchConcurrent == 0 {
		result.BatchConcurrent = defaults.BatchConcurrent
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.DatabaseURL = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model = v
		c.LiteModel, c.StandardModel, c.AdvancedModel = "", "", ""
	}
}

// LLM returns the model configuration
func (c *Config) LLM() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.Model != "" {
		cfg = cfg.WithAllModels(c.Model)
	}
	tiers := map[llm.ModelTier]string{
		llm.TierLite:     c.LiteModel,
		llm.TierStandard: c.StandardModel,
		llm.TierAdvanced: c.AdvancedModel,
	}
	for tier, model := range tiers {
		if model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	if c.Temperature != nil {
		cfg.Temperature = *c.Temperature
	}
	if c.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = c.MaxOutputTokens
	}
	return cfg
}

// Gateway returns the retry and throttle settings
func (c *Config) Gateway() llm.GatewayConfig {
	return llm.GatewayConfig{
		MaxAttempts:       c.MaxAttempts,
		AttemptTimeout:    time.Duration(c.AttemptTimeoutSec) * time.Second,
		BaseBackoff:       time.Duration(c.BaseBackoffMs) * time.Millisecond,
		MaxBackoff:        time.Duration(c.MaxBackoffMs) * time.Millisecond,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	}
}

// CacheTTL returns the cache entry lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Float32 returns a pointer to v, for optional settings such as Temperature
func Float32(v float32) *float32 {
	return &v
}
