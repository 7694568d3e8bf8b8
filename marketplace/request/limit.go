package request

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// NewRateLimit creates a limiter that restores actions tokens every interval
// and holds at most burst of them. Non positive actions or interval return an
// unrestricted limiter.
func NewRateLimit(interval time.Duration, actions, burst int) *rate.Limiter {
	if actions <= 0 || interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(interval/time.Duration(actions)), burst)
}

// WithLimiter throttles every request sent by the Requester
func WithLimiter(l *rate.Limiter) RequesterOption {
	return func(r *Requester) {
		r.limiter = l
	}
}

// waitForLimit blocks until the limiter grants a request or ctx is done
func (r *Requester) waitForLimit(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s rate limit: %w", ErrTransport, r.Name, err)
	}
	return nil
}
