package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily fetch budget has been exhausted.
var ErrDailyLimitReached = errors.New("daily fetch limit reached")

// RateLimiter spaces outgoing page fetches with a token bucket and,
// optionally, caps the number of fetches in a rolling 24-hour window.
type RateLimiter struct {
	limiter  *rate.Limiter
	daily    atomic.Int64
	maxDaily int64 // 0 means unlimited
	resetAt  time.Time
	mu       sync.Mutex
	nowFunc  func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate,
// burst size and daily cap. A perSecond of 0 or less disables spacing and
// a maxDaily of 0 disables the daily cap.
func NewRateLimiter(perSecond float64, burst int, maxDaily int64, opts ...RateLimiterOption) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	r := &RateLimiter{
		limiter:  rate.NewLimiter(limit, max(burst, 1)),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(24 * time.Hour)
	return r
}

// PerSecond returns the sustained fetch rate, or 0 when fetches are not
// spaced.
func (r *RateLimiter) PerSecond() float64 {
	if l := r.limiter.Limit(); l != rate.Inf {
		return float64(l)
	}
	return 0
}

// Wait blocks until a fetch is allowed, or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkDailyReset()

	if r.maxDaily > 0 && r.daily.Load() >= r.maxDaily {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, r.daily.Load(), r.maxDaily)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.daily.Add(1)
	return nil
}

// DailyCount returns the fetch count in the current window.
func (r *RateLimiter) DailyCount() int64 {
	return r.daily.Load()
}

// Remaining returns the fetches left in the current window, or -1 when
// there is no daily cap.
func (r *RateLimiter) Remaining() int64 {
	if r.maxDaily == 0 {
		return -1
	}
	return max(r.maxDaily-r.daily.Load(), 0)
}

// MaxDaily returns the daily cap, 0 when unlimited.
func (r *RateLimiter) MaxDaily() int64 {
	return r.maxDaily
}

// ResetAt returns when the current window ends.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkDailyReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.daily.Store(0)
		r.resetAt = now.Add(24 * time.Hour)
	}
}
