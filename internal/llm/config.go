// Package llm provides the remote structured parser clients. A Client sends a
// system instruction plus a user message and returns the model's JSON text.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

const (
	// ProviderOpenAI is any OpenAI-compatible chat/completions endpoint.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini Provider = "gemini"
)

// Default settings per provider.
const (
	DefaultOpenAIModel   = "gpt-4.1-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultTimeout       = 60 * time.Second
	DefaultTemperature   = 0.1
)

// Config holds the connection settings of a remote parser client.
type Config struct {
	Provider    Provider
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// DefaultConfig returns the default OpenAI configuration without a key.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       DefaultOpenAIModel,
		BaseURL:     DefaultOpenAIBaseURL,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// withDefaults fills unset fields with the provider's defaults.
func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderGemini:
			c.Model = DefaultGeminiModel
		default:
			c.Model = DefaultOpenAIModel
		}
	}
	if c.BaseURL == "" && c.Provider == ProviderOpenAI {
		c.BaseURL = DefaultOpenAIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
