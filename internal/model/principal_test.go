package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), &Principal{UserID: "u1", Role: "ADMIN"})
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.True(t, p.IsAdmin())
	assert.False(t, p.IsService())

	svc := &Principal{Role: "SERVICE", Service: "course-service"}
	assert.True(t, svc.IsService())
	assert.False(t, svc.IsAdmin())

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.IsAdmin())
}
