// Package auth issues and validates HS256 tokens for users and calling services.
package auth

import (
	"errors"
	"fmt"
	"time"

	"CourseLane/internal/conf"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the role claim.
const (
	RoleUser    = "USER"
	RoleAdmin   = "ADMIN"
	RoleService = "SERVICE"
)

var (
	// ErrInvalidToken is returned for malformed tokens, bad signatures and unknown roles.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the token claims. Service tokens carry the calling service name as subject.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and parses tokens with one shared secret.
type Manager struct {
	secret      []byte
	userTTL     time.Duration
	serviceName string
	serviceTTL  time.Duration
	now         func() time.Time
}

// NewManager 创建 Token 管理器
func NewManager(secret string, userTTL time.Duration, serviceName string, serviceTTL time.Duration) *Manager {
	return &Manager{
		secret:      []byte(secret),
		userTTL:     userTTL,
		serviceName: serviceName,
		serviceTTL:  serviceTTL,
		now:         time.Now,
	}
}

// IssueUserToken signs a token for an end user with role USER or ADMIN.
func (m *Manager) IssueUserToken(userID, role string) (string, error) {
	if role != RoleUser && role != RoleAdmin {
		return "", fmt.Errorf("unsupported user role %q", role)
	}
	return m.sign(&Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
	}, m.userTTL)
}

// IssueServiceToken signs a short lived token identifying this service to another one.
// A fresh token is signed for every outbound call.
func (m *Manager) IssueServiceToken() (string, error) {
	return m.sign(&Claims{
		Role: RoleService,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: m.serviceName,
		},
	}, m.serviceTTL)
}

func (m *Manager) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, algorithm, expiry and role of a token.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	switch claims.Role {
	case RoleUser, RoleAdmin:
		if claims.UserID == "" {
			return nil, fmt.Errorf("%w: missing userId", ErrInvalidToken)
		}
	case RoleService:
		if claims.Subject == "" {
			return nil, fmt.Errorf("%w: missing service subject", ErrInvalidToken)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return claims, nil
}

// NewManagerFromConfig 根据 auth 配置创建 Token 管理器
func NewManagerFromConfig(c *conf.Auth) *Manager {
	return NewManager(c.JwtSecret, c.JwtExpires, c.ServiceName, c.ServiceTokenTTL)
}
