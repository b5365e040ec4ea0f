package middleware

import (
	"context"

	"CourseLane/internal/biz"
	"CourseLane/internal/model"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/middleware"
)

// RateLimit limits each user to rpm calls per minute of the wrapped operations.
// It must run after Auth; unauthenticated requests pass through untouched.
func RateLimit(limiter *biz.RateLimiterUseCase, rpm int32, logger *pkglog.LogHelper) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			p, ok := model.PrincipalFromContext(ctx)
			if !ok || p.UserID == "" {
				return handler(ctx, req)
			}

			if err := limiter.CheckRPM(ctx, "submit:"+p.UserID, rpm); err != nil {
				logger.RateLimit("Enrollment submission throttled",
					"user_id", p.UserID,
					"retry_after_s", int64(biz.RetryAfterFromError(err).Seconds()),
				)
				return nil, err
			}
			return handler(ctx, req)
		}
	}
}
