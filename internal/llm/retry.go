package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryClass says how a failed oracle call may be retried.
type retryClass int

const (
	retryNo     retryClass = iota // permanent, surface immediately
	retryOnce                     // resample once, then give up
	retryAlways                   // transient, retry until attempts run out
)

// classify buckets an oracle error. Schema-invalid output gets a single
// resample: structured output usually recovers on the second try, and
// evaluation calls sit inside a user-facing submit request that cannot
// afford to burn the whole attempt budget on a model that keeps
// producing the same bad shape.
func classify(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNo
	}

	var (
		truncated *ErrMaxTokensExceeded
		invalid   *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &truncated):
		// Token budget problem; a retry would truncate again.
		return retryNo
	case errors.As(err, &invalid):
		return retryOnce
	}

	// Rate limits, 5xx and transport errors are all transient.
	return retryAlways
}

// retryProvider is a decorator that retries transient oracle failures
// with exponential backoff and jitter.
type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps a Provider with retry on transient failures.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{inner: p, cfg: cfg}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidBudget := 1

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classify(err) {
		case retryNo:
			return nil, err
		case retryOnce:
			if invalidBudget == 0 {
				return nil, err
			}
			invalidBudget--
		}

		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait(attempt, err)):
		}
	}

	return nil, lastErr
}

func (r *retryProvider) ModelID() string {
	return r.inner.ModelID()
}

// wait computes the backoff before the next attempt. A provider-supplied
// Retry-After wins over the computed wait.
func (r *retryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	w := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	w = math.Min(w, float64(r.cfg.MaxWait))

	// Spread concurrent retries out by up to ±20%.
	w *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(w, 0))
}
