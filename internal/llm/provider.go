package llm

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured is returned when no provider or credential is set.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty completion from model")
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a system instruction and a user prompt and returns the free-text completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one model invocation
type CompletionRequest struct {
	// System is the role instruction
	System string

	// Prompt is the user prompt
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls randomness; zero falls back to the provider config
	Temperature float64
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	// Text is the trimmed completion
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "mistral", "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for each model invocation
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature used when a request does not set one
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "mistral",
		Model:       "mistral-small-latest",
		Timeout:     120,
		MaxTokens:   4096,
		Temperature: 0.3,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	timeout := time.Duration(c.Timeout) * time.Second
	if timeout == 0 {
		timeout = fallback
	}
	return timeout
}

// resolve fills request defaults from the provider config
func (c Config) resolve(req CompletionRequest, defaultModel string) (model string, maxTokens int, temperature float64) {
	model = req.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	temperature = req.Temperature
	if temperature == 0 {
		temperature = c.Temperature
	}
	return model, maxTokens, temperature
}
