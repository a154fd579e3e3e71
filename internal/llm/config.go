// Package llm wraps the Gemini client used to summarize curated corpora and
// draft posts from them.
package llm

// ModelTier selects a model by the kind of request.
type ModelTier string

const (
	// TierLite summarizes long plain-text corpora.
	TierLite ModelTier = "lite"
	// TierStandard produces structured JSON drafts.
	TierStandard ModelTier = "standard"
)

// Generation defaults.
const (
	DefaultTemperature     float32 = 0.3
	DefaultMaxOutputTokens int32   = 4096
	DefaultLiteModel               = "gemini-2.5-flash-lite"
	DefaultStandardModel           = "gemini-2.5-flash"
)

// DefaultSystemInstruction is sent with every request.
const DefaultSystemInstruction = "You work with short social media notes. Answer in the language of the notes and never invent facts that are not in the input."

// Config selects models and generation parameters.
type Config struct {
	Models            map[ModelTier]string
	Temperature       float32
	MaxOutputTokens   int32
	SystemInstruction string
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     DefaultLiteModel,
			TierStandard: DefaultStandardModel,
		},
		Temperature:       DefaultTemperature,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		SystemInstruction: DefaultSystemInstruction,
	}
}

// GetModel returns the model for tier. A tier without its own model uses the
// standard model, then the lite one.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c that sends every tier to model.
func (c *Config) WithModel(model string) *Config {
	out := *c
	out.Models = map[ModelTier]string{TierLite: model, TierStandard: model}
	return &out
}
