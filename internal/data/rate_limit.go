package data

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

// rpmWindow RPM 计数器的固定窗口
const rpmWindow = time.Minute

// RateLimitRepo implements biz.RateLimitRepo.
// Following Kratos v2 DDD architecture, interface is defined in biz layer.
type RateLimitRepo struct {
	rdb    *redis.Client
	logger *log.Helper
}

// NewRateLimitRepo creates a new rate limit repository.
func NewRateLimitRepo(rdb *redis.Client, logger log.Logger) *RateLimitRepo {
	return &RateLimitRepo{
		rdb:    rdb,
		logger: log.NewHelper(logger),
	}
}

// IncrementRPM increments the requests-per-minute counter of a subject and returns the new count.
// The window starts at the first increment (INCR, then EXPIRE when the count is 1).
func (r *RateLimitRepo) IncrementRPM(ctx context.Context, subject string) (int32, error) {
	if r.rdb == nil {
		return 0, errNilRedis
	}

	key := BuildCacheKey(CacheKeyRate, subject, "rpm")

	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment RPM: %w", err)
	}

	if count == 1 {
		if err := r.rdb.Expire(ctx, key, rpmWindow).Err(); err != nil {
			r.logger.Warnw("msg", "failed to set RPM expiration", "subject", subject, "error", err)
		}
	}

	if count > math.MaxInt32 {
		count = math.MaxInt32
	}
	return int32(count), nil // #nosec G115 -- clamped above
}

// RetryAfter 返回当前窗口的剩余时间
func (r *RateLimitRepo) RetryAfter(ctx context.Context, subject string) (time.Duration, error) {
	if r.rdb == nil {
		return 0, errNilRedis
	}

	ttl, err := r.rdb.TTL(ctx, BuildCacheKey(CacheKeyRate, subject, "rpm")).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get RPM window: %w", err)
	}
	if ttl < 0 {
		return rpmWindow, nil
	}
	return ttl, nil
}
