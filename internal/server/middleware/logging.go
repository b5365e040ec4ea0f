package middleware

import (
	"context"
	"strings"
	"time"

	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

// Logging 返回请求日志中间件
// 读取或生成 Request ID，注入 Request Context，记录状态码与耗时并检测慢请求
//
// 日志输出示例:
//
//	🟢 POST /api/v1/enrollments - 201 (42ms) | RequestID: mgrn0zfqda
func Logging(logger *pkglog.LogHelper) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			startTime := time.Now()

			var (
				method    = "GRPC"
				path      string
				ip        string
				userAgent string
				requestID string
			)

			if tr, ok := transport.FromServerContext(ctx); ok {
				path = tr.Operation()
				requestID = tr.RequestHeader().Get(HeaderRequestID)

				if ht, ok := tr.(http.Transporter); ok {
					httpReq := ht.Request()
					method = httpReq.Method
					path = httpReq.URL.Path
					if httpReq.URL.RawQuery != "" {
						path = path + "?" + httpReq.URL.RawQuery
					}
					ip = extractClientIP(httpReq)
					userAgent = httpReq.Header.Get("User-Agent")
				}

			}
			if requestID == "" {
				requestID = pkglog.GenerateRequestID()
			}
			if tr, ok := transport.FromServerContext(ctx); ok {
				tr.ReplyHeader().Set(HeaderRequestID, requestID)
			}

			ctx = pkglog.WithRequestContext(ctx, requestID)

			reply, err := handler(ctx, req)

			duration := time.Since(startTime).Milliseconds()
			logger.RequestWithContext(ctx, method, path, statusOf(err), duration,
				"ip", ip,
				"user_agent", userAgent,
			)

			return reply, err
		}
	}
}

// extractClientIP 优先级: X-Real-IP > X-Forwarded-For > RemoteAddr
func extractClientIP(req *http.Request) string {
	if ip := req.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return req.RemoteAddr
}

func statusOf(err error) int {
	if err == nil {
		return 200
	}
	return int(errors.FromError(err).Code)
}
