package llm

import (
	"context"
	"strings"

	"github.com/roomai/agora/config"
)

// MockProvider returns fixed canned strings keyed off the instruction in the
// prompt, so a MOCK run walks every debate phase deterministically without
// touching the network.
type MockProvider struct {
	cfg config.LLMConfig
}

func NewMockProvider(cfg config.LLMConfig) *MockProvider {
	return &MockProvider{cfg: cfg}
}

func (p *MockProvider) Complete(_ context.Context, model string, messages []Message, _ float64, _ int) (string, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	switch {
	case strings.Contains(prompt, "Ask ONE critical question"):
		return "[mock " + model + "] Does the proposed approach hold for empty input?", nil
	case strings.Contains(prompt, "Defend your reasoning"):
		return "[mock " + model + "] It does: the base case returns immediately.", nil
	case strings.Contains(prompt, "List 2-3 specific weaknesses"):
		return "[mock " + model + "] 1. No complexity analysis. 2. Edge cases untested.", nil
	case strings.Contains(prompt, "Synthesize"):
		return "[mock " + model + "] Consolidated answer combining the strongest points of both drafts.", nil
	case strings.Contains(prompt, "edge-case test cases"):
		return "[mock " + model + "] Tests: empty input, single element, negative numbers, 10^6 elements.", nil
	default:
		return "[mock " + model + "] Binary search halves a sorted search space at each step.", nil
	}
}

func (p *MockProvider) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(p.cfg.Participants))
	for _, id := range p.cfg.Participants {
		out = append(out, ModelInfo{ID: id, Provider: "mock"})
	}
	return out
}
