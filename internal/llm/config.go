package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "groq", "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider"`

	Groq       GroqConfig       `yaml:"groq"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Temperature and MaxTokens are the defaults for tutoring calls.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// RequestsPerMinute throttles outgoing calls. 0 disables the limiter.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// GroqConfig holds Groq-specific configuration.
type GroqConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`    // Default: "llama-3.3-70b"
	BaseURL string `yaml:"base_url"` // Default: "https://api.groq.com/openai/v1"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"

	// JSONMode sends response_format json_object. Off by default.
	JSONMode bool `yaml:"json_mode"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "groq",
		Groq: GroqConfig{
			Model: "llama-3.3-70b",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Temperature: 0.7,
		MaxTokens:   2048,
		Timeout:     30 * time.Second,
	}
}

// ConfigFromEnv overlays environment variables onto cfg.
func ConfigFromEnv(cfg Config) Config {
	setString(&cfg.Provider, "BUDDY_LLM_PROVIDER")

	setString(&cfg.Groq.APIKey, "BUDDY_GROQ_API_KEY")
	setString(&cfg.Groq.Model, "BUDDY_GROQ_MODEL")

	setString(&cfg.Anthropic.APIKey, "BUDDY_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "BUDDY_ANTHROPIC_MODEL")

	setString(&cfg.OpenAI.APIKey, "BUDDY_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "BUDDY_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "BUDDY_OPENAI_BASE_URL")

	setString(&cfg.Gemini.APIKey, "BUDDY_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "BUDDY_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "BUDDY_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "BUDDY_OPENROUTER_MODEL")
	if v, err := strconv.ParseBool(os.Getenv("BUDDY_OPENROUTER_JSON_MODE")); err == nil {
		cfg.OpenRouter.JSONMode = v
	}

	if v, err := strconv.ParseFloat(os.Getenv("BUDDY_LLM_TEMPERATURE"), 64); err == nil {
		cfg.Temperature = v
	}
	if v, err := strconv.Atoi(os.Getenv("BUDDY_LLM_MAX_TOKENS")); err == nil {
		cfg.MaxTokens = v
	}
	if v, err := strconv.Atoi(os.Getenv("BUDDY_LLM_RPM")); err == nil {
		cfg.RequestsPerMinute = v
	}
	if v, err := time.ParseDuration(os.Getenv("BUDDY_LLM_TIMEOUT")); err == nil {
		cfg.Timeout = v
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Groq → Gemini → OpenAI → Anthropic → OpenRouter) and fills in the first
// provider whose key is found. Returns false if none found.
func DiscoverConfig(cfg Config) (Config, bool) {
	if k := os.Getenv("GROQ_API_KEY"); k != "" {
		cfg.Provider = "groq"
		cfg.Groq.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	return cfg, false
}

// HasAPIKey reports whether the selected provider has credentials.
func (c Config) HasAPIKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "groq":
		if c.Groq.APIKey == "" {
			return fmt.Errorf("BUDDY_GROQ_API_KEY is required for the groq provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("BUDDY_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("BUDDY_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("BUDDY_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("BUDDY_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative")
	}
	return nil
}
