package parallel

import (
	"context"
	"time"

	"github.com/juju/ratelimit"
)

type RateLimiter interface {
	Take(count int64) time.Duration
}

type Unlimited struct{}

func (n *Unlimited) Take(count int64) time.Duration {
	return 0
}

// NewRateLimiter creates a token bucket filled with rate tokens per second and holding
// at most burst tokens. A rate that is not positive means unlimited.
func NewRateLimiter(rate float64, burst int64) RateLimiter {
	if rate <= 0 {
		return &Unlimited{}
	}
	return ratelimit.NewBucketWithRate(rate, max(burst, 1))
}

// Wait takes count tokens and sleeps until they are available or the context is done.
// Tokens are consumed even if the wait is interrupted.
func Wait(ctx context.Context, limiter RateLimiter, count int64) error {
	d := limiter.Take(count)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
