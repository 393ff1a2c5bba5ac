package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/waxworks/vinylvault/internal/common"
	"github.com/waxworks/vinylvault/internal/kvstore"
)

// Default rate limit applied when the caller has no stricter policy.
const (
	DefaultRateLimit  = 5
	DefaultRateWindow = time.Minute
)

// RateLimitResult is returned as structured data, never as an error, so the
// caller can render a cooldown message with the remaining budget.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// RateLimiter is a sliding-window attempt counter. The attempt log persists
// through the injected store under "rate_limit_<action>_<identifier>" as a
// JSON array of unix-millisecond timestamps, so limits survive restarts.
type RateLimiter struct {
	store kvstore.Store
	now   func() time.Time
}

// NewRateLimiter returns a RateLimiter persisting through store.
func NewRateLimiter(store kvstore.Store) *RateLimiter {
	return &RateLimiter{store: store, now: time.Now}
}

// NewRateLimiterWithClock is a test constructor with an injectable clock.
func NewRateLimiterWithClock(store kvstore.Store, now func() time.Time) *RateLimiter {
	return &RateLimiter{store: store, now: now}
}

// Check records an attempt for (action, identifier) unless the sliding
// window already holds limit attempts. Timestamps older than window are
// discarded before counting. ResetTime is when the oldest surviving attempt
// falls out of the window.
//
// The returned error reflects storage trouble only; a denied attempt is
// Allowed=false with a nil error.
func (r *RateLimiter) Check(ctx context.Context, identifier, action string, limit int, window time.Duration) (RateLimitResult, error) {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}

	key := fmt.Sprintf("rate_limit_%s_%s", action, identifier)
	now := r.now()
	cutoff := now.Add(-window).UnixMilli()

	var attempts []int64
	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &attempts); err != nil {
			// A corrupted attempt log is discarded rather than locking the
			// user out forever.
			attempts = nil
		}
	case errors.Is(err, common.ErrNotFound):
	default:
		return RateLimitResult{}, fmt.Errorf("failed to load attempt log: %w", err)
	}

	kept := attempts[:0]
	for _, ts := range attempts {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		oldest := kept[0]
		for _, ts := range kept {
			if ts < oldest {
				oldest = ts
			}
		}
		return RateLimitResult{
			Allowed:   false,
			Remaining: 0,
			ResetTime: time.UnixMilli(oldest).Add(window),
		}, nil
	}

	kept = append(kept, now.UnixMilli())
	data, err := json.Marshal(kept)
	if err != nil {
		return RateLimitResult{}, err
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to persist attempt log: %w", err)
	}

	return RateLimitResult{
		Allowed:   true,
		Remaining: limit - len(kept),
		ResetTime: now.Add(window),
	}, nil
}
