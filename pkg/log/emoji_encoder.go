package log

import (
	"sync"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// emojiMap 定义日志类型到表情符号的映射
// 通过在日志调用时添加 "type" 字段，自动为日志添加对应的表情符号
var (
	emojiMu  sync.RWMutex
	emojiMap = map[string]string{
		"auth":         "🔓",
		"request":      "🌐",
		"success":      "✅",
		"database":     "💾",
		"redis":        "📦",
		"rate_limit":   "🚦",
		"breaker":      "🔌",
		"enrollment":   "🎓",
		"quota":        "🎟️",
		"cache":        "🧹",
		"notify":       "📨",
		"scheduler":    "⏰",
		"startup":      "🚀",
		"audit":        "📋",
		"security":     "🔒",
		"slow_request": "🐌",
	}
)

// statusEmoji 根据 HTTP 状态码返回表情符号
func statusEmoji(status int) string {
	switch {
	case status >= 500:
		return "🔴"
	case status >= 400:
		return "🟠"
	case status >= 300:
		return "🟡"
	default:
		return "🟢"
	}
}

func levelEmoji(level zapcore.Level) string {
	switch level {
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return "❌"
	case zapcore.WarnLevel:
		return "⚠️"
	case zapcore.DebugLevel:
		return "🐛"
	default:
		return "ℹ️"
	}
}

// EmojiConsoleEncoder 包装 Zap ConsoleEncoder，根据 status / type 字段为消息加上表情符号
type EmojiConsoleEncoder struct {
	zapcore.Encoder
	config zapcore.EncoderConfig
}

// NewEmojiConsoleEncoder 创建带表情符号的控制台编码器
func NewEmojiConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &EmojiConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		config:  cfg,
	}
}

// EncodeEntry prefixes the message with an emoji.
// Priority: HTTP status field, then type field, then level.
func (enc *EmojiConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	var logType string
	var status int64

	for _, field := range fields {
		switch {
		case field.Key == "type" && field.Type == zapcore.StringType:
			logType = field.String
		case field.Key == "status" && (field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type):
			status = field.Integer
		}
	}

	emoji := ""
	if status > 0 {
		emoji = statusEmoji(int(status))
	} else if logType != "" {
		emojiMu.RLock()
		emoji = emojiMap[logType]
		emojiMu.RUnlock()
	}
	if emoji == "" {
		emoji = levelEmoji(entry.Level)
	}

	entry.Message = emoji + " " + entry.Message

	return enc.Encoder.EncodeEntry(entry, fields)
}

// Clone 克隆编码器（Zap 内部使用）
func (enc *EmojiConsoleEncoder) Clone() zapcore.Encoder {
	return &EmojiConsoleEncoder{
		Encoder: enc.Encoder.Clone(),
		config:  enc.config,
	}
}

// RegisterEmoji adds or replaces the emoji used for a log type.
func RegisterEmoji(logType, emoji string) {
	emojiMu.Lock()
	defer emojiMu.Unlock()
	emojiMap[logType] = emoji
}
