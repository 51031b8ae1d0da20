package search

import (
	"context"
	"time"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/httpx"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilySearcher calls the Tavily search API.
type TavilySearcher struct {
	cfg      config.SearchConfig
	endpoint string // test override
}

func (s *TavilySearcher) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := s.endpoint
	if endpoint == "" {
		endpoint = tavilyEndpoint
	}

	payload := map[string]any{
		"api_key":     s.cfg.APIKey,
		"query":       query,
		"max_results": s.cfg.MaxResults,
	}

	var raw struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	client := httpx.NewClient(s.cfg.Timeout, 1, 300*time.Millisecond)
	if err := client.PostJSON(ctx, endpoint, nil, payload, &raw); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(raw.Results))
	for _, r := range raw.Results {
		out = append(out, Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return out, nil
}
