package search

import (
	"context"
	"time"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/httpx"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperSearcher calls the Serper Google-search API.
type SerperSearcher struct {
	cfg      config.SearchConfig
	endpoint string // test override
}

func (s *SerperSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := s.endpoint
	if endpoint == "" {
		endpoint = serperEndpoint
	}

	payload := map[string]any{"q": query, "num": s.cfg.MaxResults}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	client := httpx.NewClient(s.cfg.Timeout, 1, 300*time.Millisecond)
	headers := map[string]string{"X-API-KEY": s.cfg.APIKey}
	if err := client.PostJSON(ctx, endpoint, headers, payload, &raw); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(raw.Organic))
	for i, r := range raw.Organic {
		if s.cfg.MaxResults > 0 && i >= s.cfg.MaxResults {
			break
		}
		out = append(out, Result{Title: r.Title, URL: r.Link, Content: r.Snippet})
	}
	return out, nil
}
