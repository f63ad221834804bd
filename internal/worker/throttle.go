package worker

import (
	"context"
	"errors"
	"time"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
)

// MaxRetryDelay caps how long a throttled call sleeps on a Retry-After hint.
const MaxRetryDelay = 2 * time.Minute

// Throttled is a Provider whose calls draw tokens from a shared Limiter.
type Throttled struct {
	llm.Provider
	limiter  *Limiter
	retries  int
	maxDelay time.Duration
}

// Throttle wraps provider so every Complete waits for a token keyed by
// the provider's name. A rate limit response pauses that key for the
// server's Retry-After delay and is retried up to retries times.
func Throttle(provider llm.Provider, limiter *Limiter, retries int) *Throttled {
	if retries < 0 {
		retries = 0
	}
	return &Throttled{Provider: provider, limiter: limiter, retries: retries, maxDelay: MaxRetryDelay}
}

// Complete waits for a token and forwards the request.
func (t *Throttled) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	key := t.Name()
	if err := t.limiter.Wait(ctx, key); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, err := t.Provider.Complete(ctx, req)

		var rl *llm.RateLimitError
		if err == nil || attempt >= t.retries || !errors.As(err, &rl) {
			return resp, err
		}

		delay := rl.RetryAfter
		if delay > t.maxDelay {
			delay = t.maxDelay
		}
		t.limiter.Penalize(key, delay)
		if err := t.limiter.Wait(ctx, key); err != nil {
			return nil, err
		}
	}
}
