package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with capped exponential backoff.
type RetryProvider struct {
	inner   Provider
	cfg     RetryConfig
	onRetry func(ctx context.Context, attempt int, err error, wait time.Duration)
}

// RetryOption configures a RetryProvider.
type RetryOption func(*RetryProvider)

// OnRetry is called before each wait with the attempt that just failed
// (1-based).
func OnRetry(fn func(ctx context.Context, attempt int, err error, wait time.Duration)) RetryOption {
	return func(r *RetryProvider) { r.onRetry = fn }
}

// WithRetry wraps p. A config with MaxAttempts <= 0 makes a single attempt.
func WithRetry(p Provider, cfg RetryConfig, opts ...RetryOption) Provider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	r := &RetryProvider{inner: p, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type retryClass int

const (
	retryNever retryClass = iota
	retryOnce
	retryAlways
)

// classify decides how an error may be retried. Malformed output gets one
// more chance; cancellation, token overflow and rejected requests none.
func classify(err error) retryClass {
	var (
		maxTok   *ErrMaxTokensExceeded
		rejected *ErrRejected
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &maxTok), errors.As(err, &rejected):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	}
	return retryAlways
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var err error
	invalidSeen := false

	for attempt := 1; ; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if attempt >= r.cfg.MaxAttempts {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		if r.onRetry != nil {
			r.onRetry(ctx, attempt, err, wait)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff returns the wait after the given failed attempt. A rate limit
// carrying Retry-After is honoured as is; otherwise the wait grows by
// Multiplier, is capped at MaxWait and jittered by up to 20%.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt-1))
	if r.cfg.MaxWait > 0 {
		wait = math.Min(wait, float64(r.cfg.MaxWait))
	}
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}
