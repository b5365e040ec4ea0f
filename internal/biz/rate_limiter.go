package biz

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// RateLimiterUseCase implements fixed-window request limits keyed by an arbitrary subject
// (a user id for enrollment submission).
type RateLimiterUseCase struct {
	repo   RateLimitRepo
	logger *log.Helper
}

// NewRateLimiterUseCase creates a new rate limiter use case.
func NewRateLimiterUseCase(repo RateLimitRepo, logger log.Logger) *RateLimiterUseCase {
	return &RateLimiterUseCase{
		repo:   repo,
		logger: log.NewHelper(logger),
	}
}

// RateLimitExceededError represents a rate limit exceeded error with retry information.
type RateLimitExceededError struct {
	LimitType    string
	CurrentCount int32
	Limit        int32
	RetryAfter   int64 // seconds
}

// Error implements the error interface.
func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s current=%d limit=%d retry_after=%ds",
		e.LimitType, e.CurrentCount, e.Limit, e.RetryAfter)
}

// newRateLimitExceededError creates a 429 Kratos error carrying the retry hint in metadata.
func newRateLimitExceededError(limitType string, current, limit int32, retryAfter int64) error {
	e := &RateLimitExceededError{LimitType: limitType, CurrentCount: current, Limit: limit, RetryAfter: retryAfter}
	return errors.New(
		429,
		fmt.Sprintf("RATE_LIMIT_EXCEEDED_%s", limitType),
		e.Error(),
	).WithMetadata(map[string]string{
		"retry_after": strconv.FormatInt(retryAfter, 10),
	})
}

// CheckRPM checks whether subject has exceeded rpmLimit in the current minute.
// A non-positive limit disables the check.
// Redis degradation: on Redis failure, logs warning and allows request.
func (uc *RateLimiterUseCase) CheckRPM(ctx context.Context, subject string, rpmLimit int32) error {
	if rpmLimit <= 0 || subject == "" {
		return nil
	}

	count, err := uc.repo.IncrementRPM(ctx, subject)
	if err != nil {
		uc.logger.Warnf("Redis RPM check failed for %s: %v (request allowed)", subject, err)
		return nil
	}

	if count <= rpmLimit {
		return nil
	}

	retryAfter := int64(60)
	if ttl, err := uc.repo.RetryAfter(ctx, subject); err == nil && ttl > 0 {
		retryAfter = int64(math.Ceil(ttl.Seconds()))
	}

	uc.logger.Warnw("msg", "RPM limit exceeded",
		"subject", subject,
		"current", count,
		"limit", rpmLimit,
		"retry_after_s", retryAfter)

	return newRateLimitExceededError("RPM", count, rpmLimit, retryAfter)
}

// RetryAfterFromError extracts the retry hint of a rate limit error, zero when absent.
func RetryAfterFromError(err error) time.Duration {
	e := errors.FromError(err)
	if e == nil || e.Code != 429 {
		return 0
	}
	secs, parseErr := strconv.ParseInt(e.Metadata["retry_after"], 10, 64)
	if parseErr != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}
