package biz

import (
	"context"
	"time"
)

// RateLimitRepo defines the interface for rate limiting counters.
// Following Kratos v2 DDD architecture, interfaces are defined in biz layer.
// Implementation is in data layer (data.RateLimitRepo).
type RateLimitRepo interface {
	// IncrementRPM bumps the current minute window for subject and returns the new count.
	IncrementRPM(ctx context.Context, subject string) (int32, error)
	// RetryAfter reports how long until the current window resets.
	RetryAfter(ctx context.Context, subject string) (time.Duration, error)
}
