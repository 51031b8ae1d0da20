package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/httpx"
)

// OpenRouterProvider talks to any OpenAI-compatible chat completions API.
type OpenRouterProvider struct {
	cfg  config.LLMConfig
	http *httpx.Client
}

func NewOpenRouterProvider(cfg config.LLMConfig) *OpenRouterProvider {
	return &OpenRouterProvider{
		cfg:  cfg,
		http: httpx.NewClient(cfg.Timeout, cfg.MaxRetries, 300*time.Millisecond),
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion request for the given model.
func (p *OpenRouterProvider) Complete(ctx context.Context, model string, messages []Message, temperature float64, maxTokens int) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("completion API key not configured")
	}
	if model == "" {
		return "", fmt.Errorf("model identifier is empty")
	}

	req := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	if err := p.http.PostJSON(ctx, p.cfg.BaseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", fmt.Errorf("completion call for %s: %w", model, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("completion call for %s: %s", model, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion call for %s: no choices in response", model)
	}
	return resp.Choices[0].Message.Content, nil
}

// Models lists the configured model identifiers.
func (p *OpenRouterProvider) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(p.cfg.Models)+len(p.cfg.Participants))
	seen := make(map[string]bool)
	for _, m := range p.cfg.Models {
		out = append(out, ModelInfo{
			ID:          m.ID,
			Name:        m.Name,
			Provider:    orDefault(m.Provider, p.cfg.Provider),
			MaxTokens:   m.MaxTokens,
			Description: m.Description,
		})
		seen[m.ID] = true
	}
	for _, id := range p.cfg.Participants {
		if !seen[id] {
			out = append(out, ModelInfo{ID: id, Provider: p.cfg.Provider})
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
