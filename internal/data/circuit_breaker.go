package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"CourseLane/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

// BreakerStateRepo shares circuit breaker trips across instances through Redis.
// It implements biz.BreakerStateRepo.
//
// Keys:
//   - breaker:{name}:open  holds the trip time (unix ms) and expires after the reset timeout
//   - breaker:{name}:probe is taken with SET NX by the single instance running the half-open trial
type BreakerStateRepo struct {
	rdb     *redis.Client
	enabled bool
	logger  *log.Helper
}

// NewBreakerStateRepo creates the shared state repository. It is disabled unless
// breaker.shared is set and a Redis client is available.
func NewBreakerStateRepo(c *conf.Breaker, rdb *redis.Client, logger log.Logger) *BreakerStateRepo {
	return &BreakerStateRepo{
		rdb:     rdb,
		enabled: c != nil && c.Shared && rdb != nil,
		logger:  log.NewHelper(logger),
	}
}

// Enabled 是否启用共享熔断状态
func (r *BreakerStateRepo) Enabled() bool {
	return r.enabled
}

func breakerKey(name, field string) string {
	return BuildCacheKey(CacheKeyBreaker, name, field)
}

// MarkOpen 记录熔断打开，其他实例在 ttl 内遵循该状态
func (r *BreakerStateRepo) MarkOpen(ctx context.Context, name string, at time.Time, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}
	if err := r.rdb.Set(ctx, breakerKey(name, "open"), at.UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to publish breaker trip: %w", err)
	}
	return nil
}

// OpenSince returns the time another instance tripped the breaker, or nil when it is not open.
func (r *BreakerStateRepo) OpenSince(ctx context.Context, name string) (*time.Time, error) {
	if !r.enabled {
		return nil, nil
	}

	raw, err := r.rdb.Get(ctx, breakerKey(name, "open")).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read breaker trip: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid breaker trip value %q: %w", raw, err)
	}
	t := time.UnixMilli(ms)
	return &t, nil
}

// AcquireProbe reserves the fleet-wide half-open trial. Only one caller gets true until ttl elapses
// or the breaker closes.
func (r *BreakerStateRepo) AcquireProbe(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if !r.enabled {
		return true, nil
	}
	ok, err := r.rdb.SetNX(ctx, breakerKey(name, "probe"), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire breaker probe: %w", err)
	}
	return ok, nil
}

// MarkClosed 清除熔断标记和试探锁
func (r *BreakerStateRepo) MarkClosed(ctx context.Context, name string) error {
	if !r.enabled {
		return nil
	}
	if err := r.rdb.Del(ctx, breakerKey(name, "open"), breakerKey(name, "probe")).Err(); err != nil {
		return fmt.Errorf("failed to clear breaker state: %w", err)
	}
	r.logger.Debugw("msg", "shared breaker state cleared", "breaker", name)
	return nil
}
