// Package search grounds debates with a single external web-search call.
package search

import (
	"context"

	"github.com/roomai/agora/config"
)

// Result is one ranked source snippet.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Searcher issues one search query. A nil result slice with a nil error means
// "search unavailable", which is distinct from zero results.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Provider identifiers.
const (
	ProviderTavily = "tavily"
	ProviderSerper = "serper"
)

// New builds the configured searcher. A missing API key disables grounding
// by returning nil (not an error): the engine treats a nil searcher as
// "skip the grounding phase".
func New(cfg config.SearchConfig) Searcher {
	if cfg.APIKey == "" {
		return nil
	}
	switch cfg.Provider {
	case ProviderSerper:
		return &SerperSearcher{cfg: cfg}
	default:
		return &TavilySearcher{cfg: cfg}
	}
}
