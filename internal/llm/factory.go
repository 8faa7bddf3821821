package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/buddy/internal/logger"
)

// Deps are the collaborators the provider middleware writes to. All fields
// are optional.
type Deps struct {
	Sink     EventSink
	Observer Observer
	Logger   *logger.Logger
}

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, rate limit, retry and
// logging middleware.
func NewProvider(ctx context.Context, cfg Config, deps Deps) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "groq":
		base, err = NewGroqProvider(cfg.Groq)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → rate limit → retry → logging → base
	opts := []LoggingOption{WithProviderName(cfg.Provider)}
	if deps.Observer != nil {
		opts = append(opts, WithObserver(deps.Observer))
	}
	p := WithLogging(base, deps.Sink, deps.Logger, opts...)
	var retryOpts []RetryOption
	if deps.Logger != nil {
		log := deps.Logger
		retryOpts = append(retryOpts, OnRetry(func(ctx context.Context, attempt int, err error, wait time.Duration) {
			log.Warn("llm request failed, retrying",
				"provider", cfg.Provider, "purpose", PurposeFrom(ctx), "session_id", SessionIDFrom(ctx),
				"attempt", attempt, "wait", wait, "error", err)
		}))
	}
	p = WithRetry(p, cfg.Retry, retryOpts...)
	if cfg.RequestsPerMinute > 0 {
		p = WithRateLimit(p, cfg.RequestsPerMinute)
	}
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}

	return p, nil
}
