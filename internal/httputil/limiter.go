// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every outbound call of a client.
// Tokens refill at a fixed rate up to the burst cap; Wait blocks until a
// token is available or ctx is done.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter returns a full bucket refilled at perSecond tokens per second.
// The cap is the larger of perSecond and burst.
func NewLimiter(perSecond, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst < perSecond {
		burst = perSecond
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until one token can be taken.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}

// Available reports the number of tokens the bucket holds at t.
func (l *Limiter) Available(at time.Time) float64 {
	return l.lim.TokensAt(at)
}

// Drain empties the bucket as of now. Refill resumes from zero.
func (l *Limiter) Drain(now time.Time) {
	if n := int(l.lim.TokensAt(now)); n > 0 {
		l.lim.AllowN(now, n)
	}
}

// Burst returns the bucket cap.
func (l *Limiter) Burst() int {
	return l.lim.Burst()
}
