package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces parse work with a token bucket. A nil Limiter means pacing
// is disabled and every Wait returns immediately.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter builds a limiter for r events per second with burst b.
// A non-positive rate disables pacing.
func NewLimiter(r float64, b int) *Limiter {
	if r <= 0 {
		return nil
	}
	if b < 1 {
		b = 1
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(r), b)}
}

// Wait blocks until one token is available or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.inner.Wait(ctx)
}

// Allow reports whether one event may proceed now without blocking.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.inner.Allow()
}
