package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		assert.Len(t, id, 10)
		for _, c := range id {
			assert.Contains(t, base36Chars, string(c))
		}
		seen[id] = struct{}{}
	}
	assert.Greater(t, len(seen), 95)
}

func TestRequestContext(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestID(context.Background()))

	ctx := WithRequestContext(context.Background(), "abc123defg")
	assert.Equal(t, "abc123defg", GetRequestID(ctx))
	assert.GreaterOrEqual(t, GetElapsedTime(ctx), int64(0))

	SetIdentity(ctx, "user-9", "ADMIN")
	reqCtx := GetRequestContext(ctx)
	assert.Equal(t, "user-9", reqCtx.UserID)
	assert.Equal(t, "ADMIN", reqCtx.Role)

	// no request context: SetIdentity is a no-op
	SetIdentity(context.Background(), "user-9", "ADMIN")
}
