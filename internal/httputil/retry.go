// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages: a retry
// policy for rate-limited and flaky APIs, and a token-bucket limiter.
package httputil

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff step. Tests override this to avoid
// real sleeps.
var RetryBaseDelay = 200 * time.Millisecond

// MaxBackoff caps the exponential part of the delay.
var MaxBackoff = 10 * time.Second

// MinRetryAfter is the floor applied to server-provided Retry-After hints.
var MinRetryAfter = time.Second

// jitter returns the random component added to every backoff.
var jitter = defaultJitter

func defaultJitter() time.Duration {
	return 100*time.Millisecond + rand.N(300*time.Millisecond)
}

// DefaultMaxAttempts bounds attempts per request when a policy leaves it unset.
const DefaultMaxAttempts = 6

// Waiter gates outbound calls. *Limiter implements it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// drainer is implemented by limiters that are emptied on HTTP 429.
type drainer interface {
	Drain(now time.Time)
}

// Policy retries requests that fail with transport errors, HTTP 429, or
// HTTP 5xx. A Retry-After header takes precedence over computed backoff.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first
	// (default 6).
	MaxAttempts int

	// Limiter, when set, is waited on before every attempt.
	Limiter Waiter

	// Backoff overrides the computed delay when set.
	Backoff func(attempt int) time.Duration

	// OnRetry is called before each backoff wait. Optional.
	OnRetry func(attempt int, wait time.Duration, cause string)
}

// Retryable reports whether an HTTP status code warrants another attempt.
func Retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Backoff returns the computed delay before the attempt following the
// given 1-based attempt: min(MaxBackoff, RetryBaseDelay*2^(attempt-1))
// plus jitter.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := MaxBackoff
	if attempt < 32 {
		if exp := RetryBaseDelay << (attempt - 1); exp > 0 && exp < MaxBackoff {
			d = exp
		}
	}
	return d + jitter()
}

// RetryAfter parses the Retry-After header as delay-seconds or an HTTP
// date. The result is never below MinRetryAfter.
func RetryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = time.Until(at)
	} else {
		return 0, false
	}
	if d < MinRetryAfter {
		d = MinRetryAfter
	}
	return d, true
}

// Do executes req, retrying on transport errors and retryable statuses
// until MaxAttempts is reached. When attempts are exhausted on a retryable
// status the last response is returned so the caller can inspect it; when
// they are exhausted on a transport error that error is returned. If ctx is
// cancelled during a wait Do returns ctx.Err().
func (p Policy) Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = Backoff
	}

	for attempt := 1; ; attempt++ {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		var wait time.Duration
		var cause string
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= maxAttempts {
				return nil, err
			}
			wait, cause = backoff(attempt), err.Error()
		case !Retryable(resp.StatusCode):
			return resp, nil
		default:
			if attempt >= maxAttempts {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			cause = resp.Status
			if d, ok := p.Limiter.(drainer); ok && resp.StatusCode == http.StatusTooManyRequests {
				d.Drain(time.Now())
			}
			if ra, ok := RetryAfter(resp); ok {
				wait = ra
			} else {
				wait = backoff(attempt)
			}
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, cause)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
