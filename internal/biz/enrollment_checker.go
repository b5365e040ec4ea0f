package biz

import (
	"context"
	stderrors "errors"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/internal/data"
	"CourseLane/internal/model"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// EnrollmentBreakerName names the breaker guarding the enrollment service.
const EnrollmentBreakerName = "enrollment-service"

const (
	defaultEnrollmentCacheTTL      = 5 * time.Minute
	defaultEnrollmentCacheSize     = 10000
	defaultEnrollmentLookupTimeout = 5 * time.Second
	// localTierMaxTTL 启用 Redis 时本地缓存的最长 TTL，限制跨实例的过期窗口
	localTierMaxTTL = 30 * time.Second
)

// EnrollmentStatusClient asks the enrollment service whether a user is enrolled.
// Implementation is in data layer (data.EnrollmentServiceClient).
type EnrollmentStatusClient interface {
	FetchEnrollmentStatus(ctx context.Context, userID, courseID string) (bool, error)
}

// enrollmentLookup is the breaker result; ok is false for the fallback value.
type enrollmentLookup struct {
	enrolled bool
	ok       bool
}

// EnrollmentChecker answers "is this user enrolled in this course" for material access.
// Lookups are cached in process (L1) and in Redis (L2), and remote calls go through
// the enrollment-service breaker.
type EnrollmentChecker struct {
	client   EnrollmentStatusClient
	breaker  *CircuitBreaker[enrollmentLookup]
	local    *expirable.LRU[string, bool]
	shared   data.CacheClient
	ttl      time.Duration
	localTTL time.Duration
	timeout  time.Duration
	failOpen bool
	group    singleflight.Group
	logger   *pkglog.LogHelper
}

// NewEnrollmentChecker creates an enrollment checker. cache may be nil to disable the Redis tier.
func NewEnrollmentChecker(c *conf.Enrollment, client EnrollmentStatusClient, registry *BreakerRegistry, cache data.CacheClient, logger log.Logger) *EnrollmentChecker {
	ttl := defaultEnrollmentCacheTTL
	size := defaultEnrollmentCacheSize
	timeout := defaultEnrollmentLookupTimeout
	failOpen := true
	if c != nil {
		if c.CacheTTL > 0 {
			ttl = c.CacheTTL
		}
		if c.CacheSize > 0 {
			size = c.CacheSize
		}
		if c.Timeout > 0 {
			timeout = c.Timeout
		}
		failOpen = c.FailOpen
	}

	// 本地副本只有本实例能失效，共享 Redis 时缩短其寿命
	localTTL := ttl
	if cache != nil && localTTL > localTierMaxTTL {
		localTTL = localTierMaxTTL
	}

	return &EnrollmentChecker{
		client:   client,
		breaker:  GetOrCreateBreaker(registry, EnrollmentBreakerName, enrollmentLookup{}),
		local:    expirable.NewLRU[string, bool](size, nil, localTTL),
		shared:   cache,
		ttl:      ttl,
		localTTL: localTTL,
		timeout:  timeout,
		failOpen: failOpen,
		logger:   pkglog.NewLogHelper(logger),
	}
}

func enrollmentCacheKey(userID, courseID string) string {
	return data.BuildCacheKey(data.CacheKeyEnrollment, userID, courseID)
}

// IsUserEnrolled reports whether the principal may access the course.
// It never returns an error: when the answer cannot be obtained the configured
// failure policy decides.
func (ec *EnrollmentChecker) IsUserEnrolled(ctx context.Context, p *model.Principal, courseID string) bool {
	if p.IsAdmin() {
		return true
	}
	if p == nil {
		return false
	}

	userID := p.UserID
	if _, err := uuid.Parse(userID); err != nil {
		ec.logger.Warnw("msg", "malformed user id, applying failure policy", "user_id", userID, "fail_open", ec.failOpen)
		return ec.failOpen
	}
	if _, err := uuid.Parse(courseID); err != nil {
		ec.logger.Warnw("msg", "malformed course id, applying failure policy", "course_id", courseID, "fail_open", ec.failOpen)
		return ec.failOpen
	}

	key := enrollmentCacheKey(userID, courseID)
	if enrolled, ok := ec.local.Get(key); ok {
		return enrolled
	}

	if ec.shared != nil {
		var enrolled bool
		err := ec.shared.Get(ctx, key, &enrolled)
		switch {
		case err == nil:
			ec.logger.Cache("enrollment answered from shared cache", "key", key)
			ec.local.Add(key, enrolled)
			return enrolled
		case !stderrors.Is(err, data.ErrCacheNotFound):
			ec.logger.Debugw("msg", "enrollment cache read failed", "error", err)
		}
	}

	v, _, _ := ec.group.Do(key, func() (interface{}, error) {
		// 远程调用与发起请求的客户端解耦：客户端断开不应计为依赖失败，也不应影响共享同一 key 的其他调用方
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ec.timeout)
		defer cancel()

		lookup := ec.breaker.Execute(callCtx, func(ctx context.Context) (enrollmentLookup, error) {
			enrolled, err := ec.client.FetchEnrollmentStatus(ctx, userID, courseID)
			if err != nil {
				return enrollmentLookup{}, err
			}
			return enrollmentLookup{enrolled: enrolled, ok: true}, nil
		})
		if lookup.ok {
			ec.store(callCtx, key, lookup.enrolled)
		}
		return lookup, nil
	})

	lookup := v.(enrollmentLookup)
	if !lookup.ok {
		ec.logger.Warnw("msg", "enrollment lookup unavailable, applying failure policy",
			"user_id", userID,
			"course_id", courseID,
			"fail_open", ec.failOpen)
		return ec.failOpen
	}
	return lookup.enrolled
}

func (ec *EnrollmentChecker) store(ctx context.Context, key string, enrolled bool) {
	ec.local.Add(key, enrolled)
	if ec.shared == nil {
		return
	}
	if err := ec.shared.Set(ctx, key, enrolled, ec.ttl); err != nil {
		ec.logger.Debugw("msg", "enrollment cache write failed", "error", err)
	}
}

// InvalidateEnrollment drops the cached answer for a user and course from both tiers.
func (ec *EnrollmentChecker) InvalidateEnrollment(ctx context.Context, userID, courseID string) {
	if ec == nil {
		return
	}
	key := enrollmentCacheKey(userID, courseID)
	ec.local.Remove(key)
	if ec.shared == nil {
		return
	}
	if err := ec.shared.Delete(ctx, key); err != nil {
		ec.logger.Warnw("msg", "failed to invalidate enrollment cache", "key", key, "error", err)
	}
}
