// Package middleware provides transport middleware for authentication, request logging and rate limiting.
package middleware

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"strings"
	"time"

	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"
	"CourseLane/internal/model"
	"CourseLane/pkg/auth"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// Header names read by the auth middleware.
const (
	HeaderAuthorization = "Authorization"
	HeaderServiceKey    = "X-Service-Key"
)

// serviceOperations are the only operations a SERVICE token may call.
var serviceOperations = map[string]struct{}{
	v1.OperationEnrollmentServiceGetEnrollmentStatus:      {},
	v1.OperationEnrollmentServiceBatchGetEnrollmentStatus: {},
}

// Auth 返回认证中间件
// 校验 Bearer JWT，SERVICE 角色还必须携带匹配的 X-Service-Key
// 通过后把调用方写入 Context（model.WithPrincipal）和请求日志上下文
func Auth(tokens *auth.Manager, serviceKey string, logger *pkglog.LogHelper) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return nil, biz.ErrUnauthorized
			}
			startTime := time.Now()
			operation := tr.Operation()

			token, found := bearerToken(tr.RequestHeader().Get(HeaderAuthorization))
			if !found {
				logger.Security("Missing bearer token", "operation", operation)
				return nil, biz.ErrUnauthorized
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				logger.Security("Rejected token", "operation", operation, "error", err)
				if stderrors.Is(err, auth.ErrTokenExpired) {
					return nil, biz.ErrUnauthorized.WithMetadata(map[string]string{"token": "expired"})
				}
				return nil, biz.ErrUnauthorized
			}

			p := &model.Principal{UserID: claims.UserID, Role: claims.Role}
			identity := claims.UserID
			if claims.Role == auth.RoleService {
				p.Service = claims.Subject
				identity = claims.Subject
				if !validServiceKey(tr.RequestHeader().Get(HeaderServiceKey), serviceKey) {
					logger.Security("Service key mismatch", "service", claims.Subject, "operation", operation)
					return nil, biz.ErrUnauthorized
				}
				if _, allowed := serviceOperations[operation]; !allowed {
					logger.Security("Service token used outside status operations", "service", claims.Subject, "operation", operation)
					return nil, biz.ErrForbidden
				}
			}

			pkglog.SetIdentity(ctx, identity, claims.Role)
			logger.Auth("Authenticated "+claims.Role+" "+identity,
				"operation", operation,
				"duration_ms", time.Since(startTime).Milliseconds(),
			)

			return handler(model.WithPrincipal(ctx, p), req)
		}
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func validServiceKey(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
