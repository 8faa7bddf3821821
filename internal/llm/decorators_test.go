package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/buddy/internal/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	events []RequestEvent
	err    error
}

func (s *recordingSink) AppendLLMRequest(_ context.Context, ev RequestEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

type countingObserver struct {
	calls, failures int
}

func (o *countingObserver) ObserveLLMRequest(_, _ string, success bool, _ float64, _, _ int) {
	o.calls++
	if !success {
		o.failures++
	}
}

func TestLogging_RecordsEvents(t *testing.T) {
	sink := &recordingSink{}
	obs := &countingObserver{}
	mock := NewMockProvider(
		MockResponse{Content: []byte(`{"ok":true}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, sink, nil, WithProviderName("groq"), WithObserver(obs))

	ctx := WithSessionID(WithPurpose(context.Background(), "teaching"), "s-42")
	if _, err := p.Generate(ctx, Request{System: "persona", Messages: []Message{{Role: RoleUser, Content: "Please proceed."}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(sink.events) != 2 {
		t.Fatalf("events = %d", len(sink.events))
	}
	ok := sink.events[0]
	if ok.Provider != "groq" || ok.Purpose != "teaching" || ok.SessionID != "s-42" || !ok.Success {
		t.Errorf("event = %+v", ok)
	}
	if ok.InputTokens != 7 || ok.ResponseBody != `{"ok":true}` {
		t.Errorf("event = %+v", ok)
	}
	if want := "[system]\npersona\n\n[user]\nPlease proceed.\n\n"; ok.RequestBody != want {
		t.Errorf("request body = %q", ok.RequestBody)
	}
	if failed := sink.events[1]; failed.Success || failed.ErrorMessage == "" {
		t.Errorf("event = %+v", failed)
	}
	if obs.calls != 2 || obs.failures != 1 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestLogging_SinkFailureDoesNotFailRequest(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	sink := &recordingSink{err: errors.New("disk full")}

	p := WithLogging(NewMockProvider(MockText("hi")), sink, log)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("failed to record llm request event").Len() != 1 {
		t.Errorf("expected a warning, got %v", logs.All())
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestTimeout(t *testing.T) {
	_, err := WithTimeout(slowProvider{}, 5*time.Millisecond).Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline, got %v", err)
	}
}

func TestRateLimit_CancelledWait(t *testing.T) {
	mock := NewMockProvider(MockText("a"), MockText("b"))
	p := WithRateLimit(mock, 1)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("first call should pass the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T: %v", err, err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d", mock.CallCount())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, Deps{})
	if err != nil || p.ModelID() != "mock" {
		t.Fatalf("p = %v, err = %v", p, err)
	}
	if _, err := NewProvider(context.Background(), Config{Provider: "nope"}, Deps{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := NewProvider(context.Background(), Config{Provider: "groq"}, Deps{}); err == nil {
		t.Fatal("expected error for missing key")
	}
}
