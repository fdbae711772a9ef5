package llm

import (
	"context"
	"fmt"
)

// Request is one structured extraction call.
type Request struct {
	System string
	User   string
}

// Client is an abstraction over remote parser providers.
type Client interface {
	// GenerateJSON returns the model's reply, expected to be a JSON object.
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// Model returns the model name used for requests.
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// StatusError is returned when the provider answers with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote parser status %d: %s", e.StatusCode, truncate(e.Body, maxErrorBody))
}

// NewClient creates a client for the configured provider.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := config.withDefaults()

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
