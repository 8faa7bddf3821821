package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/buddy/internal/logger"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner    Provider
	provider string
	sink     EventSink
	observer Observer
	log      *logger.Logger
}

// LoggingOption configures a LoggingProvider.
type LoggingOption func(*LoggingProvider)

// WithObserver reports each request to o as well.
func WithObserver(o Observer) LoggingOption {
	return func(l *LoggingProvider) { l.observer = o }
}

// WithProviderName sets the provider label stored with each event.
func WithProviderName(name string) LoggingOption {
	return func(l *LoggingProvider) { l.provider = name }
}

// WithLogging wraps a Provider with event logging. A nil sink only logs.
func WithLogging(p Provider, sink EventSink, log *logger.Logger, opts ...LoggingOption) Provider {
	if log == nil {
		log = logger.Nop()
	}
	l := &LoggingProvider{inner: p, provider: p.ModelID(), sink: sink, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)

	ev := RequestEvent{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		SessionID:   SessionIDFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = string(resp.Content)
	}

	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.Warn("llm request failed",
			"purpose", purpose,
			"model", ev.Model,
			"session_id", ev.SessionID,
			"latency_ms", ev.LatencyMs,
			"error", err,
		)
	} else {
		l.log.Debug("llm request",
			"purpose", purpose,
			"model", ev.Model,
			"input_tokens", ev.InputTokens,
			"output_tokens", ev.OutputTokens,
			"latency_ms", ev.LatencyMs,
		)
	}

	if l.observer != nil {
		l.observer.ObserveLLMRequest(purpose, ev.Model, ev.Success, latency.Seconds(), ev.InputTokens, ev.OutputTokens)
	}

	// Don't fail the request if the event can't be stored.
	if l.sink != nil {
		if logErr := l.sink.AppendLLMRequest(ctx, ev); logErr != nil {
			l.log.Warn("failed to record llm request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.JSON {
		b.WriteString("[format: json]\n")
	}

	return b.String()
}
