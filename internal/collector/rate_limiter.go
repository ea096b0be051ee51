package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultRateLimit = 5000 // GitHub API default limit
	lowWaterMark     = 10
)

// RateLimiter paces GitHub API calls
type RateLimiter interface {
	Wait(ctx context.Context) error
	CheckLimit() (remaining int, resetTime time.Time, err error)
	UpdateLimit(remaining int, resetTime time.Time)
	// Backoff blocks further calls until the given time
	Backoff(until time.Time)
}

// githubRateLimiter tracks the primary quota from response headers and a
// backoff deadline set by secondary rate limit responses
type githubRateLimiter struct {
	mu           sync.Mutex
	remaining    int
	resetTime    time.Time
	backoffUntil time.Time
	minDelay     time.Duration
	lastCall     time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() RateLimiter {
	return newRateLimiter(100 * time.Millisecond)
}

func newRateLimiter(minDelay time.Duration) *githubRateLimiter {
	return &githubRateLimiter{
		remaining: defaultRateLimit,
		resetTime: time.Now().Add(time.Hour),
		minDelay:  minDelay,
	}
}

// Wait waits until it's safe to make another API call
func (r *githubRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d := time.Until(r.backoffUntil); d > 0 {
		slog.Warn("github secondary rate limit, backing off", "wait", d.Round(time.Second))
		if err := r.sleep(ctx, d); err != nil {
			return err
		}
	}

	if r.remaining <= lowWaterMark {
		if d := time.Until(r.resetTime); d > 0 {
			slog.Info("github rate limit low, waiting for reset", "remaining", r.remaining, "wait", d.Round(time.Second))
			if err := r.sleep(ctx, d); err != nil {
				return err
			}
			slog.Info("github rate limit reset")
		}
		r.remaining = defaultRateLimit
		r.resetTime = time.Now().Add(time.Hour)
	}

	if elapsed := time.Since(r.lastCall); elapsed < r.minDelay {
		if err := r.sleep(ctx, r.minDelay-elapsed); err != nil {
			return err
		}
	}

	r.lastCall = time.Now()
	return nil
}

// sleep releases the lock while waiting. Callers must hold r.mu.
func (r *githubRateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckLimit returns the current rate limit status
func (r *githubRateLimiter) CheckLimit() (remaining int, resetTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetTime, nil
}

// UpdateLimit updates the rate limit from API response headers
func (r *githubRateLimiter) UpdateLimit(remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.resetTime = resetTime
}

// Backoff blocks further calls until the given time
func (r *githubRateLimiter) Backoff(until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if until.After(r.backoffUntil) {
		r.backoffUntil = until
	}
}
