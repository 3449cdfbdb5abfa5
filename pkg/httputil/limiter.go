package httputil

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests with a token bucket.
// A nil *Limiter or one created with a non-positive rate never blocks.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows perSecond requests per second with a burst of one.
func NewLimiter(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.bucket == nil {
		return ctx.Err()
	}
	return l.bucket.Wait(ctx)
}
