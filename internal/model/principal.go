package model

import (
	"context"

	"CourseLane/pkg/auth"
)

// Principal is the authenticated caller of a request.
// For service callers UserID is empty and Service holds the calling service name.
type Principal struct {
	UserID  string
	Role    string
	Service string
}

// IsAdmin 调用方是否为管理员
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == auth.RoleAdmin
}

// IsService 调用方是否为内部服务
func (p *Principal) IsService() bool {
	return p != nil && p.Role == auth.RoleService
}

type principalKey struct{}

// WithPrincipal 将调用方写入 ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
