package llm

import "context"

// RequestEvent is the record of one provider call, written by the logging
// decorator.
type RequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventSink receives request events. The sqlite event repository implements it.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, ev RequestEvent) error
}

// Observer is notified of every completed request. Used for metrics.
type Observer interface {
	ObserveLLMRequest(purpose, model string, success bool, latencySeconds float64, inputTokens, outputTokens int)
}
