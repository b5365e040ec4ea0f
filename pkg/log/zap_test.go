package log

import (
	"os"
	"path/filepath"
	"testing"

	"CourseLane/internal/conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger_NilConfig(t *testing.T) {
	_, err := NewZapLogger(nil)
	assert.ErrorContains(t, err, "log config is nil")
}

func TestNewZapLogger_InvalidLevel(t *testing.T) {
	_, err := NewZapLogger(&conf.Log{Level: "loud", Format: "json"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewZapLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			logger, err := NewZapLogger(&conf.Log{Level: "debug", Format: format, Env: "production"})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestNewZapLogger_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "courselane.log")

	logger, err := NewZapLogger(&conf.Log{Level: "info", Format: "json", Env: "production", OutputFile: logFile})
	require.NoError(t, err)

	logger.Info("written to file")
	_ = logger.Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
	assert.Contains(t, string(content), `"service":"CourseLane"`)
}

func TestEmojiConsoleEncoder_EncodeEntry(t *testing.T) {
	enc := NewEmojiConsoleEncoder(zapcore.EncoderConfig{MessageKey: "msg"})

	tests := []struct {
		name   string
		fields []zapcore.Field
		level  zapcore.Level
		emoji  string
	}{
		{"status wins", []zapcore.Field{{Key: "status", Type: zapcore.Int64Type, Integer: 503}}, zapcore.InfoLevel, "🔴"},
		{"type mapping", []zapcore.Field{{Key: "type", Type: zapcore.StringType, String: "breaker"}}, zapcore.WarnLevel, "🔌"},
		{"level fallback", nil, zapcore.ErrorLevel, "❌"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := enc.EncodeEntry(zapcore.Entry{Level: tt.level, Message: "hello"}, tt.fields)
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.emoji+" hello")
		})
	}
}
