package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider talks to a local Ollama daemon through /api/chat.
type OllamaProvider struct {
	client *jsonClient
	config Config
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`

	// Present only when done is true
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaProvider defaults to the daemon on localhost. No key is needed.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	// Local models on CPU can take minutes per stage
	client := newJSONClient("ollama", baseURL, config, 300*time.Second)
	client.errorMessage = func(body []byte) string {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) != nil {
			return ""
		}
		return apiErr.Error
	}

	return &OllamaProvider{client: client, config: config}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable reports whether the daemon answers and, when a model is
// configured, whether that model has been pulled.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	var tags ollamaTags
	if err := p.client.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return false
	}
	if p.config.Model == "" {
		return true
	}
	want := withDefaultTag(p.config.Model)
	for _, m := range tags.Models {
		if withDefaultTag(m.Name) == want {
			return true
		}
	}
	return false
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model, maxTokens, temperature := p.config.resolve(req, "")
	if model == "" {
		return nil, fmt.Errorf("%w: ollama model must be specified (e.g., llama3.1:8b, mistral)", ErrNotConfigured)
	}

	messages := make([]ollamaMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})

	var resp ollamaChatResponse
	err := p.client.do(ctx, http.MethodPost, "/api/chat", ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Options:  ollamaOptions{Temperature: temperature, NumPredict: maxTokens},
	}, &resp)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	// Some models report zero counts; estimate at roughly 4 characters per token
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(req.System) + len(req.Prompt) + len(text)) / 4
	}

	return &CompletionResponse{
		Text:       text,
		Model:      resp.Model,
		TokensUsed: tokensUsed,
	}, nil
}

// withDefaultTag makes "llama3.1" and "llama3.1:latest" compare equal.
func withDefaultTag(name string) string {
	if !strings.Contains(name, ":") {
		return name + ":latest"
	}
	return name
}
