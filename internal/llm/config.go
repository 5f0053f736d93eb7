// Package llm provides the AI gateway: model configuration, the provider client, the retrying
// gateway used by every AI-assisted component, and tolerant decoding of model responses.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: detail extraction
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: question generation, quick rewrites
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: premium prompt building
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Default generation settings
const (
	DefaultTemperature     float32 = 0.3
	DefaultMaxOutputTokens int32   = 2048
)

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := c.clone()
	next.Models[tier] = model
	return next
}

// WithAllModels returns a new Config that uses model for every tier
func (c *Config) WithAllModels(model string) *Config {
	next := c.clone()
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		next.Models[tier] = model
	}
	return next
}

func (c *Config) clone() *Config {
	next := &Config{
		Provider:        c.Provider,
		Models:          make(map[ModelTier]string, len(c.Models)),
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
	for k, v := range c.Models {
		next.Models[k] = v
	}
	return next
}
