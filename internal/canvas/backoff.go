package canvas

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"
)

// SleepFunc pauses for d or returns early with the context's error.
// Injected so retry behavior is testable without wall-clock waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BackoffPolicy decides retry behavior for a single Canvas HTTP attempt.
// Retries are granted only for 429, or 403 with the rate-limit-remaining
// header at zero. Any other status is handed back to the caller untouched.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      func() float64 // returns [0,1); nil means math/rand
}

func NewBackoffPolicy(maxAttempts int, baseDelay time.Duration) BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
	}
}

// Retryable reports whether the response outcome warrants another attempt.
func Retryable(status int, rateLimitRemaining string) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status == http.StatusForbidden && rateLimitRemaining == "0"
}

// Delay returns the pause before retrying the given zero-based attempt:
// exponential growth from the base, plus up to 30% jitter.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	base := p.BaseDelay << uint(attempt)
	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	return base + time.Duration(jitter()*float64(base)*0.3)
}
