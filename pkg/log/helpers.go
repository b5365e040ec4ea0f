package log

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// SlowRequestThresholdMs is the duration above which a request is reported as slow.
const SlowRequestThresholdMs = 1000

// LogHelper 扩展 Kratos log.Helper
// 通过在日志调用时自动添加 "type" 字段，触发 EmojiConsoleEncoder 的表情符号映射
type LogHelper struct {
	*log.Helper
}

// NewLogHelper 创建增强的日志辅助器
func NewLogHelper(logger log.Logger) *LogHelper {
	return &LogHelper{
		Helper: log.NewHelper(logger),
	}
}

func typed(logType, msg string, kvs []interface{}) []interface{} {
	all := make([]interface{}, 0, len(kvs)+4)
	all = append(all, "msg", msg)
	all = append(all, kvs...)
	return append(all, "type", logType)
}

// Auth 记录认证相关日志（🔓）
func (h *LogHelper) Auth(msg string, kvs ...interface{}) {
	h.Infow(typed("auth", msg, kvs)...)
}

// Security 记录认证失败、越权等安全日志（🔒）
func (h *LogHelper) Security(msg string, kvs ...interface{}) {
	h.Warnw(typed("security", msg, kvs)...)
}

// RateLimit 记录速率限制日志（🚦）
func (h *LogHelper) RateLimit(msg string, kvs ...interface{}) {
	h.Warnw(typed("rate_limit", msg, kvs)...)
}

// Breaker 记录熔断器状态变化（🔌）
func (h *LogHelper) Breaker(msg string, kvs ...interface{}) {
	h.Warnw(typed("breaker", msg, kvs)...)
}

// Enrollment 记录报名相关日志（🎓）
func (h *LogHelper) Enrollment(msg string, kvs ...interface{}) {
	h.Infow(typed("enrollment", msg, kvs)...)
}

// Quota 记录名额相关日志（🎟️）
func (h *LogHelper) Quota(msg string, kvs ...interface{}) {
	h.Infow(typed("quota", msg, kvs)...)
}

// Cache 记录缓存相关日志（🧹）
func (h *LogHelper) Cache(msg string, kvs ...interface{}) {
	h.Debugw(typed("cache", msg, kvs)...)
}

// Scheduler 记录定时任务日志（⏰）
func (h *LogHelper) Scheduler(msg string, kvs ...interface{}) {
	h.Infow(typed("scheduler", msg, kvs)...)
}

// Startup 记录启动日志（🚀）
func (h *LogHelper) Startup(msg string, kvs ...interface{}) {
	h.Infow(typed("startup", msg, kvs)...)
}

// SlowRequest 记录慢请求警告（🐌）
func (h *LogHelper) SlowRequest(ctx context.Context, method, url string, duration, threshold int64) {
	reqCtx := GetRequestContext(ctx)
	msg := fmt.Sprintf("[%s] Slow request detected | %s %s | %dms (threshold: %dms)",
		reqCtx.RequestID, method, url, duration, threshold)
	h.Warnw(typed("slow_request", msg, []interface{}{
		"request_id", reqCtx.RequestID,
		"method", method,
		"url", url,
		"duration_ms", duration,
		"threshold_ms", threshold,
	})...)
}

// RequestWithContext 记录 HTTP / gRPC 请求日志，自动从 Context 提取 Request ID 并检测慢请求
func (h *LogHelper) RequestWithContext(ctx context.Context, method, url string, status int, durationMs int64, kvs ...interface{}) {
	reqCtx := GetRequestContext(ctx)

	msg := fmt.Sprintf("%s %s - %d (%dms) | RequestID: %s", method, url, status, durationMs, reqCtx.RequestID)
	all := typed("request", msg, kvs)
	all = append(all,
		"request_id", reqCtx.RequestID,
		"user_id", reqCtx.UserID,
		"role", reqCtx.Role,
		"method", method,
		"url", url,
		"status", status,
		"duration_ms", durationMs,
	)

	if status >= 500 {
		h.Errorw(all...)
	} else {
		h.Infow(all...)
	}

	if durationMs > SlowRequestThresholdMs {
		h.SlowRequest(ctx, method, url, durationMs, SlowRequestThresholdMs)
	}
}
