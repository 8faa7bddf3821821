// Package tutor orchestrates tutoring sessions. Every operation loads a
// session, runs one flow against it and persists the result, holding a
// per-session lock for the whole cycle. The reasoning service proposes
// content; phase changes are always decided here.
package tutor

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/buddy/internal/diagnosis"
	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/logger"
	"github.com/abhisek/buddy/internal/mastery"
	"github.com/abhisek/buddy/internal/metrics"
	"github.com/abhisek/buddy/internal/question"
	"github.com/abhisek/buddy/internal/session"
	"github.com/abhisek/buddy/internal/store"
)

// Service runs tutoring sessions.
type Service struct {
	store    store.SessionStore
	provider llm.Provider
	cfg      Config
	policy   *mastery.Policy
	loop     *diagnosis.Loop
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	locks    *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithMetrics records operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service backed by st and p.
func New(st store.SessionStore, p llm.Provider, opts ...Option) *Service {
	svc := &Service{
		store:    st,
		provider: p,
		cfg:      DefaultConfig(),
		log:      logger.Nop(),
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.cfg.ConversationWindow <= 0 {
		svc.cfg.ConversationWindow = session.DefaultWindow
	}
	svc.policy = mastery.NewPolicy(svc.cfg.Mastery)
	svc.loop = diagnosis.NewLoop(svc.cfg.MaxDiagnosticQuestions)
	return svc
}

// flow is one mutating step run against a loaded session. Anything it
// changes is discarded when it returns an error.
type flow func(ctx context.Context, s *session.Session) ([]Display, error)

// mutate runs fn under the session lock and persists the session when fn
// succeeds.
func (svc *Service) mutate(ctx context.Context, op, id string, fn flow) (*Response, error) {
	start := time.Now()
	unlock := svc.locks.Lock(id)
	defer unlock()

	s, err := svc.load(ctx, op, id)
	if err != nil {
		return svc.fail(op, id, "", start, err)
	}

	before := s.Phase
	ctx = llm.WithSessionID(ctx, id)
	items, err := fn(ctx, s)
	if err != nil {
		return svc.fail(op, id, before, start, err)
	}

	s.Touch(svc.now())
	if err := svc.store.Put(ctx, s); err != nil {
		return svc.fail(op, id, before, start, internal(op, err))
	}

	if s.Phase != before {
		svc.metrics.PhaseTransition(string(before), string(s.Phase))
		svc.log.Debug("phase changed", "session_id", id, "from", before, "to", s.Phase, "op", op)
	}
	svc.metrics.Operation(op, "ok", time.Since(start))
	return svc.respond(s, items), nil
}

// view runs a read-only fn on the latest persisted record.
func (svc *Service) view(ctx context.Context, op, id string, fn func(s *session.Session) []Display) (*Response, error) {
	start := time.Now()
	s, err := svc.load(ctx, op, id)
	if err != nil {
		return svc.fail(op, id, "", start, err)
	}
	svc.metrics.Operation(op, "ok", time.Since(start))
	return svc.respond(s, fn(s)), nil
}

func (svc *Service) load(ctx context.Context, op, id string) (*session.Session, error) {
	if id == "" {
		return nil, invalid(op, "session id is required")
	}
	s, err := svc.store.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, notFound(op, id)
	case err != nil:
		return nil, internal(op, err)
	}
	return s, nil
}

func (svc *Service) fail(op, id string, phase session.Phase, start time.Time, err error) (*Response, error) {
	kind := KindOf(err)
	if kind == KindInternal {
		var te *Error
		if !errors.As(err, &te) {
			err = internal(op, err)
		}
	}

	kv := []any{"op", op, "session_id", id, "error", err}
	switch kind {
	case KindServiceUnavailable:
		svc.log.Warn("reasoning service unavailable", kv...)
	case KindInternal:
		svc.log.Error("operation failed", kv...)
	default:
		svc.log.Debug("operation rejected", kv...)
	}
	svc.metrics.Operation(op, string(kind), time.Since(start))
	return svc.failure(id, phase, err), err
}

// generate runs one structured call to the reasoning service. Failures are
// ServiceUnavailable.
func (svc *Service) generate(ctx context.Context, op, purpose, system, user string, schema *llm.Schema) (*llm.Result, error) {
	res, err := llm.Generate(llm.WithPurpose(ctx, purpose), svc.provider, llm.Call{
		System:      system,
		User:        user,
		Structured:  true,
		Schema:      schema,
		MaxTokens:   svc.cfg.MaxTokens,
		Temperature: svc.cfg.Temperature,
	})
	if err != nil {
		return nil, unavailable(op, err)
	}
	return res, nil
}

// normalize turns a generated question into a typed one, logging every
// data-quality issue it had to paper over. concept is the fallback tag.
func (svc *Service) normalize(op string, raw any, concept string) (*question.Question, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, unavailable(op, errors.New("generated question missing"))
	}
	if _, tagged := m["concept_tested"]; !tagged && concept != "" {
		m["concept_tested"] = concept
	}
	q, issues, err := question.Normalize(m)
	if err != nil {
		return nil, unavailable(op, err)
	}
	for _, is := range issues {
		svc.log.Warn("question normalized", "op", op, "question_id", q.ID, "issue", is.String())
	}
	return q, nil
}

// transition applies ev and reports an illegal event as a validation error.
func transition(op string, s *session.Session, ev session.Event) error {
	if _, _, err := s.Apply(ev); err != nil {
		return invalidErr(op, err)
	}
	return nil
}
