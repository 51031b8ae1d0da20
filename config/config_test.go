package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.RunMode != RunModeLive {
		t.Fatalf("expected LIVE default, got %s", cfg.General.RunMode)
	}
	if cfg.Server.Address != ":3000" {
		t.Fatalf("unexpected address %s", cfg.Server.Address)
	}
	if cfg.LLM.Provider != "openrouter" || cfg.LLM.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected llm defaults %+v", cfg.LLM)
	}
	if len(cfg.LLM.Participants) != 2 {
		t.Fatalf("expected 2 default participants, got %v", cfg.LLM.Participants)
	}
	if cfg.Sandbox.CompileTimeoutMS != 10000 || cfg.Sandbox.RunTimeoutMS != 3000 {
		t.Fatalf("unexpected sandbox timeouts %+v", cfg.Sandbox)
	}
	if cfg.Sandbox.BaseURL != "https://emkc.org/api/v2/piston" {
		t.Fatalf("unexpected sandbox base url %s", cfg.Sandbox.BaseURL)
	}
	if cfg.Search.Provider != "tavily" || cfg.Search.MaxResults != 5 {
		t.Fatalf("unexpected search defaults %+v", cfg.Search)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
general:
  run_mode: MOCK
server:
  address: ":8080"
llm:
  participants:
    - model-a
    - model-b
    - model-c
  temperature: 0.3
search:
  provider: serper
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.RunMode != RunModeMock {
		t.Fatalf("expected MOCK, got %s", cfg.General.RunMode)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Server.Address)
	}
	if len(cfg.LLM.Participants) != 3 || cfg.LLM.Participants[2] != "model-c" {
		t.Fatalf("unexpected participants %v", cfg.LLM.Participants)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Fatalf("unexpected temperature %v", cfg.LLM.Temperature)
	}
	if cfg.Search.Provider != "serper" {
		t.Fatalf("unexpected search provider %s", cfg.Search.Provider)
	}
	// defaults still fill unset fields
	if cfg.LLM.Timeout != 90*time.Second {
		t.Fatalf("unexpected llm timeout %v", cfg.LLM.Timeout)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("TAVILY_API_KEY", "tv-key")
	t.Setenv("RUN_MODE", "MOCK")
	t.Setenv("PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "or-key" {
		t.Fatalf("expected OPENROUTER_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
	if cfg.Search.APIKey != "tv-key" {
		t.Fatalf("expected TAVILY_API_KEY fallback, got %q", cfg.Search.APIKey)
	}
	if cfg.General.RunMode != RunModeMock {
		t.Fatalf("expected RUN_MODE override, got %s", cfg.General.RunMode)
	}
	if cfg.Server.Address != ":9999" {
		t.Fatalf("expected PORT override, got %s", cfg.Server.Address)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		General: GeneralConfig{RunMode: RunModeLive},
		LLM:     LLMConfig{Participants: []string{"m"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error: LIVE without API key")
	}

	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.LLM.Participants = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error: no participants")
	}

	cfg.General.RunMode = "STAGING"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error: bad run mode")
	}

	mock := &Config{
		General: GeneralConfig{RunMode: RunModeMock},
		LLM:     LLMConfig{Participants: []string{"m"}},
	}
	if err := mock.Validate(); err != nil {
		t.Fatalf("MOCK mode must not require an API key: %v", err)
	}
}
