package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/pkg/auth"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnrollmentClient(t *testing.T, baseURL string, tokens *auth.Manager) *EnrollmentServiceClient {
	t.Helper()
	client, err := NewEnrollmentServiceClient(
		&conf.Enrollment{BaseURL: baseURL + "/", Timeout: time.Second},
		&conf.Auth{ServiceKey: "svc-key"},
		tokens,
		log.DefaultLogger,
	)
	require.NoError(t, err)
	return client
}

func TestEnrollmentServiceClient_FetchEnrollmentStatus(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour, "course-service", time.Minute)

	var gotPath, gotUser, gotKey string
	var gotClaims *auth.Claims
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("userId")
		gotKey = r.Header.Get(ServiceKeyHeader)
		claims, err := tokens.Parse(r.Header.Get("Authorization")[len("Bearer "):])
		if err == nil {
			gotClaims = claims
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"ok","data":{"isEnrolled":true}}`))
	}))
	defer server.Close()

	client := newTestEnrollmentClient(t, server.URL, tokens)

	enrolled, err := client.FetchEnrollmentStatus(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, enrolled)
	assert.Equal(t, "/api/v1/enrollments/c1/status", gotPath)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, "svc-key", gotKey)
	require.NotNil(t, gotClaims)
	assert.Equal(t, auth.RoleService, gotClaims.Role)
	assert.Equal(t, "course-service", gotClaims.Subject)
}

func TestEnrollmentServiceClient_Failures(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour, "course-service", time.Minute)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		errPart string
	}{
		{
			name: "non 2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			errPart: "HTTP 503",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			errPart: "failed to decode",
		},
		{
			name: "error envelope",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"error","message":"db down"}`))
			},
			errPart: "db down",
		},
		{
			name: "missing data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"success"}`))
			},
			errPart: `status "success"`,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(1500 * time.Millisecond)
				_, _ = w.Write([]byte(`{"status":"success","data":{"isEnrolled":true}}`))
			},
			errPart: "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestEnrollmentClient(t, server.URL, tokens).FetchEnrollmentStatus(context.Background(), "u1", "c1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestNewEnrollmentServiceClient_BadProxy(t *testing.T) {
	_, err := NewEnrollmentServiceClient(
		&conf.Enrollment{BaseURL: "http://x", Timeout: time.Second, ProxyURL: "ftp://proxy"},
		&conf.Auth{},
		auth.NewManager("s", time.Hour, "svc", time.Minute),
		log.DefaultLogger,
	)
	assert.Error(t, err)
}
