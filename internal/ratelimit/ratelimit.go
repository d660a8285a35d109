// Package ratelimit caps accepted-looking submissions per client address over
// a trailing window, counted from the persistent submission log.
package ratelimit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/repo"
)

// Counter counts logged submissions from ip since a point in time.
type Counter interface {
	CountSince(ctx context.Context, ip string, since time.Time, excludeBlocked bool) (int64, error)
}

// DBCounter counts rows of the block_events table.
type DBCounter struct {
	DB *gorm.DB
}

func (c DBCounter) CountSince(ctx context.Context, ip string, since time.Time, excludeBlocked bool) (int64, error) {
	return repo.CountSince(ctx, c.DB, ip, since, excludeBlocked)
}

// Result is the outcome of LogLimiter.Check.
type Result struct {
	Allowed bool
	Count   int64
	// Err is set when the count failed and the check failed open.
	Err error
}

// LogLimiter rejects an address once Max submissions were logged for it
// within Window.
type LogLimiter struct {
	Counter Counter
	Max     int
	Window  time.Duration
	// ExcludeBlocked counts only rows that were not blocked.
	ExcludeBlocked bool
	// Timeout bounds the count query; zero means no extra bound.
	Timeout time.Duration
	Now     func() time.Time
}

func (l *LogLimiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Check reports whether ip may submit again. Unknown addresses and count
// failures are allowed.
func (l *LogLimiter) Check(ctx context.Context, ip string) Result {
	if ip == "" || l.Counter == nil || l.Max <= 0 {
		return Result{Allowed: true}
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	n, err := l.Counter.CountSince(ctx, ip, l.now().Add(-l.Window), l.ExcludeBlocked)
	if err != nil {
		return Result{Allowed: true, Err: err}
	}
	return Result{Allowed: n < int64(l.Max), Count: n}
}
