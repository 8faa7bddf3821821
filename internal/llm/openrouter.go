package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterTitle identifies the app in OpenRouter's usage dashboard.
const openRouterTitle = "Buddy Tutor"

// OpenRouterProvider routes OpenAI-protocol requests through OpenRouter.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Model ids are passed through unchanged. JSON mode is only requested when
// cfg.JSONMode is set, since not every routed model accepts it.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := &http.Client{Transport: titleTransport{base: http.DefaultTransport}}
	inner, err := newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, client)
	if err != nil {
		return nil, err
	}
	inner.jsonMode = cfg.JSONMode
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// titleTransport adds the attribution header OpenRouter reads.
type titleTransport struct {
	base http.RoundTripper
}

func (t titleTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(r)
}
