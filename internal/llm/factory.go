package llm

import (
	"fmt"
	"strings"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name yields ErrNotConfigured: analysis never runs unauthenticated.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "mistral":
		return NewMistralProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(config)

	case "":
		return nil, ErrNotConfigured

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: mistral, openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// ConfigFromModel converts model configuration to llm.Config
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:    llmConfig.Provider,
		Model:       llmConfig.Model,
		APIKey:      llmConfig.APIKey,
		BaseURL:     llmConfig.BaseURL,
		Timeout:     llmConfig.Timeout,
		MaxTokens:   llmConfig.MaxTokens,
		Temperature: llmConfig.Temperature,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}
}

// APIKeyEnv returns the environment variable holding the provider credential.
// Ollama needs none and returns "".
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "mistral":
		return "MISTRAL_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	case "gemini", "google":
		return "GEMINI_API_KEY"
	}
	return ""
}
