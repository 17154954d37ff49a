package roles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"libdb.so/fogo-faucet/internal/metrics"
)

// Limiter paces role mutations with a token bucket.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows rps mutations per second with a burst of burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until one mutation is allowed, or ctx is done. It returns
// immediately if ctx would expire before the wait is over.
func (l *Limiter) Wait(ctx context.Context) error {
	r := l.limiter.Reserve()
	if !r.OK() {
		return errors.New("rate: cannot reserve token")
	}

	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
		r.Cancel()
		return fmt.Errorf("rate limit wait of %s exceeds the deadline: %w", delay, context.DeadlineExceeded)
	}

	metrics.RoleRateLimitWaits.Inc()

	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
