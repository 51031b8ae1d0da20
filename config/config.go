package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Run modes. MOCK swaps every completion call for deterministic canned
// responses so the pipeline can be exercised without spending API credits.
const (
	RunModeLive = "LIVE"
	RunModeMock = "MOCK"
)

// Config holds all configuration for the debate service.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	RunMode  string `mapstructure:"run_mode"` // LIVE or MOCK
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains the chat-completion provider configuration.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"` // openrouter, openai
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Participants []string      `mapstructure:"participants"` // default debate roster
	Models       []LLMModel    `mapstructure:"models"`
}

// LLMModel describes one configured model identifier.
type LLMModel struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Provider    string `mapstructure:"provider"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	Description string `mapstructure:"description"`
}

// SearchConfig contains web-search grounding settings. An empty API key
// silently disables grounding.
type SearchConfig struct {
	Provider   string        `mapstructure:"provider"` // tavily, serper
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SandboxConfig contains the code-execution service settings. Compile/run
// timeouts are passed to the sandbox explicitly on every call.
type SandboxConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	CompileTimeoutMS int           `mapstructure:"compile_timeout_ms"`
	RunTimeoutMS     int           `mapstructure:"run_timeout_ms"`
	FallbackLanguage string        `mapstructure:"fallback_language"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// CacheConfig contains response-cache backend settings. Postgres is preferred
// when configured, then Redis, then the in-process map.
type CacheConfig struct {
	PostgresURL string      `mapstructure:"postgres_url"`
	Redis       RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig contains metrics settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func (c *Config) Validate() error {
	switch c.General.RunMode {
	case RunModeLive, RunModeMock:
	default:
		return fmt.Errorf("general.run_mode must be %s or %s, got %q", RunModeLive, RunModeMock, c.General.RunMode)
	}
	if c.General.RunMode == RunModeLive && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key not configured (set OPENROUTER_API_KEY or run in MOCK mode)")
	}
	if len(c.LLM.Participants) == 0 {
		return fmt.Errorf("llm.participants must contain at least one model identifier")
	}
	return nil
}

// Load reads configuration from an optional config file plus AGORA_* env
// overrides. A missing config file is fine; defaults cover every field.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("AGORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvFallbacks(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.run_mode", RunModeLive)

	v.SetDefault("server.address", ":3000")

	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.participants", []string{
		"meta-llama/llama-3.3-70b-instruct:free",
		"mistralai/mistral-7b-instruct:free",
	})

	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", 15*time.Second)

	v.SetDefault("sandbox.base_url", "https://emkc.org/api/v2/piston")
	v.SetDefault("sandbox.compile_timeout_ms", 10000)
	v.SetDefault("sandbox.run_timeout_ms", 3000)
	v.SetDefault("sandbox.fallback_language", "python")
	v.SetDefault("sandbox.timeout", 30*time.Second)

	v.SetDefault("cache.redis.port", "6379")

	v.SetDefault("telemetry.enabled", true)
}

// applyEnvFallbacks honors the plain env names the deployment already uses,
// without requiring the AGORA_ prefix.
func applyEnvFallbacks(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		switch cfg.Search.Provider {
		case "serper":
			cfg.Search.APIKey = os.Getenv("SERPER_API_KEY")
		default:
			cfg.Search.APIKey = os.Getenv("TAVILY_API_KEY")
		}
	}
	if mode := os.Getenv("RUN_MODE"); mode != "" {
		cfg.General.RunMode = mode
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Address = ":" + port
	}
}
