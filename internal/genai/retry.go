package genai

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultMaxAttempts bounds the attempt budget per request.
	DefaultMaxAttempts = 3

	// DefaultRateLimitBase seeds the exponential backoff after a 429.
	DefaultRateLimitBase = 400 * time.Millisecond

	// DefaultTransientDelay is the flat wait after a transient failure.
	DefaultTransientDelay = 250 * time.Millisecond
)

// Retrier wraps a Generator with bounded-attempt backoff. Rate-limited
// failures wait base*2^attempt (or the server hint when larger), transient
// failures wait a short flat delay, and fatal failures stop immediately
// without spending further attempts.
type Retrier struct {
	gen            Generator
	maxAttempts    int
	rateLimitBase  time.Duration
	transientDelay time.Duration

	// sleep is swappable in tests. It must honor ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Generator = (*Retrier)(nil)

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) RetrierOption {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithRateLimitBase overrides the rate-limit backoff base.
func WithRateLimitBase(d time.Duration) RetrierOption {
	return func(r *Retrier) {
		if d > 0 {
			r.rateLimitBase = d
		}
	}
}

// WithTransientDelay overrides the transient-failure delay.
func WithTransientDelay(d time.Duration) RetrierOption {
	return func(r *Retrier) {
		if d > 0 {
			r.transientDelay = d
		}
	}
}

// WithSleepFunc replaces the wait primitive, for tests.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) RetrierOption {
	return func(r *Retrier) {
		r.sleep = fn
	}
}

// NewRetrier wraps gen with the retry policy.
func NewRetrier(gen Generator, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		gen:            gen,
		maxAttempts:    DefaultMaxAttempts,
		rateLimitBase:  DefaultRateLimitBase,
		transientDelay: DefaultTransientDelay,
		sleep:          sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate runs the wrapped generator until success, a fatal failure, or
// attempt exhaustion. The last classified failure is returned on
// exhaustion; callers must handle it explicitly.
func (r *Retrier) Generate(ctx context.Context, req *CompletionRequest) (string, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		text, err := r.gen.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ClassOf(err) == ClassFatal {
			return "", err
		}
		if attempt == r.maxAttempts-1 {
			break
		}

		if err := r.sleep(ctx, r.delayFor(err, attempt)); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// delayFor computes the wait before the next attempt. For rate limiting
// the exponential delay grows with the zero-based attempt index; a server
// hint wins only when it is larger.
func (r *Retrier) delayFor(err error, attempt int) time.Duration {
	if ClassOf(err) != ClassRateLimited {
		return r.transientDelay
	}

	d := r.rateLimitBase * time.Duration(1<<uint(attempt))
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.RetryAfter > d {
		d = ue.RetryAfter
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
