package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound search API calls to a fixed aggregate rate. It
// is safe for concurrent callers; waiters are granted slots in best-effort
// arrival order by the underlying token bucket.
type Limiter struct {
	bucket *rate.Limiter
}

// New builds a limiter allowing requestsPerSecond sustained calls with the
// given burst. Burst values below 1 are raised to 1 so Wait can ever succeed.
func New(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until the next request is permitted or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("wait for request slot: %w", err)
	}
	return nil
}
