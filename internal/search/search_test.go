package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roomai/agora/config"
)

func TestNewWithoutAPIKeyDisablesSearch(t *testing.T) {
	if s := New(config.SearchConfig{Provider: ProviderTavily}); s != nil {
		t.Fatalf("expected nil searcher without an API key")
	}
}

func TestNewPicksProvider(t *testing.T) {
	s := New(config.SearchConfig{Provider: ProviderSerper, APIKey: "k"})
	if _, ok := s.(*SerperSearcher); !ok {
		t.Fatalf("expected SerperSearcher, got %T", s)
	}
	s = New(config.SearchConfig{Provider: "", APIKey: "k"})
	if _, ok := s.(*TavilySearcher); !ok {
		t.Fatalf("expected TavilySearcher by default, got %T", s)
	}
}

func TestTavilySearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "A", "url": "https://a.example", "content": "alpha"},
				{"title": "B", "url": "https://b.example", "content": "beta"},
			},
		})
	}))
	defer srv.Close()

	s := &TavilySearcher{
		cfg:      config.SearchConfig{APIKey: "tk", MaxResults: 3, Timeout: time.Second},
		endpoint: srv.URL,
	}
	results, err := s.Search(context.Background(), "golang generics")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "A" || results[0].URL != "https://a.example" || results[0].Content != "alpha" {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if gotBody["api_key"] != "tk" || gotBody["query"] != "golang generics" {
		t.Fatalf("unexpected request body %v", gotBody)
	}
}

func TestSerperSearch(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "A", "link": "https://a.example", "snippet": "alpha"},
				{"title": "B", "link": "https://b.example", "snippet": "beta"},
				{"title": "C", "link": "https://c.example", "snippet": "gamma"},
			},
		})
	}))
	defer srv.Close()

	s := &SerperSearcher{
		cfg:      config.SearchConfig{APIKey: "sk", MaxResults: 2, Timeout: time.Second},
		endpoint: srv.URL,
	}
	results, err := s.Search(context.Background(), "weather in oslo")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotKey != "sk" {
		t.Fatalf("expected API key header, got %q", gotKey)
	}
	if len(results) != 2 {
		t.Fatalf("expected results truncated to 2, got %d", len(results))
	}
	if results[1].URL != "https://b.example" {
		t.Fatalf("unexpected second result %+v", results[1])
	}
}

func TestTavilySearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &TavilySearcher{cfg: config.SearchConfig{APIKey: "tk", Timeout: time.Second}, endpoint: srv.URL}
	if _, err := s.Search(context.Background(), "q"); err == nil {
		t.Fatalf("expected error from upstream failure")
	}
}
