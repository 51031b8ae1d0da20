// Package llm wraps the chat-completion round-trip behind a small Provider
// interface so the engine and the tests can substitute fakes.
package llm

import (
	"context"
	"fmt"

	"github.com/roomai/agora/config"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo describes a configured model identifier for the /models endpoint.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Provider    string `json:"provider"`
	MaxTokens   int    `json:"max_tokens,omitempty"`
	Description string `json:"description,omitempty"`
}

// Provider is the interface all completion implementations satisfy. An
// unrecognized model identifier must surface as an error, never as silently
// empty content.
type Provider interface {
	Complete(ctx context.Context, model string, messages []Message, temperature float64, maxTokens int) (string, error)
	Models() []ModelInfo
}

// New creates a completion provider. runMode MOCK returns the deterministic
// canned provider regardless of the configured type.
func New(cfg config.LLMConfig, runMode string) (Provider, error) {
	if runMode == config.RunModeMock {
		return NewMockProvider(cfg), nil
	}
	switch cfg.Provider {
	case "openrouter", "openai":
		return NewOpenRouterProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider type: %s", cfg.Provider)
	}
}
