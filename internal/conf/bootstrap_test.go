package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/courselane")
	t.Setenv("JWT_SECRET", "test-jwt-secret-key")
	t.Setenv("SERVICE_KEY", "test-service-key")
}

func TestNewBootstrap_Defaults(t *testing.T) {
	configPath := writeConfig(t, `server:
  http:
    addr: :8080
data:
  database:
    driver: mysql
`)
	setRequiredEnv(t)

	bc, err := NewBootstrap(configPath)
	require.NoError(t, err)
	require.NotNil(t, bc)

	assert.Equal(t, ":8080", bc.Server.Http.Addr)
	assert.Equal(t, "tcp", bc.Server.Http.Network)
	assert.Equal(t, 30*time.Second, bc.Server.Http.Timeout)
	assert.Equal(t, ":9000", bc.Server.Grpc.Addr)

	assert.Equal(t, "mysql", bc.Data.Database.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/courselane", bc.Data.Database.Source)
	assert.Equal(t, "127.0.0.1:6379", bc.Data.Redis.Addr)
	assert.Equal(t, 200*time.Millisecond, bc.Data.Redis.ReadTimeout)

	assert.Equal(t, "test-jwt-secret-key", bc.Auth.JwtSecret)
	assert.Equal(t, "test-service-key", bc.Auth.ServiceKey)
	assert.Equal(t, time.Minute, bc.Auth.ServiceTokenTTL)

	assert.Equal(t, 5*time.Minute, bc.Enrollment.CacheTTL)
	assert.Equal(t, 5*time.Second, bc.Enrollment.Timeout)
	assert.True(t, bc.Enrollment.FailOpen)

	assert.Equal(t, 5, bc.Breaker.FailureThreshold)
	assert.Equal(t, 30*time.Second, bc.Breaker.ResetTimeout)

	assert.Equal(t, 48*time.Hour, bc.Quota.PendingTTL)
	assert.Equal(t, int32(30), bc.RateLimit.SubmitRPM)
	assert.Equal(t, "notify.enrollment", bc.Notify.Topic)
	assert.Empty(t, bc.Notify.Brokers)

	assert.Equal(t, "info", bc.Log.Level)
	assert.Equal(t, "json", bc.Log.Format)
}

func TestNewBootstrap_FileValues(t *testing.T) {
	configPath := writeConfig(t, `enrollment:
  base_url: http://enrollment.internal:8080
  cache_ttl: 2m
  fail_open: false
breaker:
  failure_threshold: 3
  reset_timeout: 10s
  shared: true
notify:
  brokers:
    - kafka-1:9092
    - kafka-2:9092
`)
	setRequiredEnv(t)

	bc, err := NewBootstrap(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://enrollment.internal:8080", bc.Enrollment.BaseURL)
	assert.Equal(t, 2*time.Minute, bc.Enrollment.CacheTTL)
	assert.False(t, bc.Enrollment.FailOpen)
	assert.Equal(t, 3, bc.Breaker.FailureThreshold)
	assert.Equal(t, 10*time.Second, bc.Breaker.ResetTimeout)
	assert.True(t, bc.Breaker.Shared)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, bc.Notify.Brokers)
}

func TestNewBootstrap_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		verify func(t *testing.T, bc *Bootstrap)
	}{
		{
			name: "override_http_addr",
			env:  map[string]string{"COURSELANE_SERVER_HTTP_ADDR": ":9999"},
			verify: func(t *testing.T, bc *Bootstrap) {
				assert.Equal(t, ":9999", bc.Server.Http.Addr)
			},
		},
		{
			name: "override_breaker_threshold",
			env:  map[string]string{"COURSELANE_BREAKER_FAILURE_THRESHOLD": "7"},
			verify: func(t *testing.T, bc *Bootstrap) {
				assert.Equal(t, 7, bc.Breaker.FailureThreshold)
			},
		},
		{
			name: "enrollment_service_url_alias",
			env:  map[string]string{"ENROLLMENT_SERVICE_URL": "http://enroll.svc:8081"},
			verify: func(t *testing.T, bc *Bootstrap) {
				assert.Equal(t, "http://enroll.svc:8081", bc.Enrollment.BaseURL)
			},
		},
		{
			name: "fail_closed_from_env",
			env:  map[string]string{"COURSELANE_ENROLLMENT_FAIL_OPEN": "false"},
			verify: func(t *testing.T, bc *Bootstrap) {
				assert.False(t, bc.Enrollment.FailOpen)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			bc, err := NewBootstrap("")
			require.NoError(t, err)
			tt.verify(t, bc)
		})
	}
}

func TestNewBootstrap_MissingRequired(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVICE_KEY", "")

	_, err := NewBootstrap("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYSQL_DSN")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SERVICE_KEY")
}

func TestNewBootstrap_FileNotFound(t *testing.T) {
	setRequiredEnv(t)

	_, err := NewBootstrap(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_InvalidValues(t *testing.T) {
	bc := &Bootstrap{
		Data: &Data{Database: &Database{Driver: "postgres", Source: "dsn"}},
		Auth: &Auth{JwtSecret: "s", ServiceKey: "k", ServiceTokenTTL: time.Minute},
		Enrollment: &Enrollment{
			BaseURL:   "not a url",
			Timeout:   time.Second,
			CacheTTL:  time.Minute,
			CacheSize: 10,
		},
		Breaker: &Breaker{FailureThreshold: 0, ResetTimeout: time.Second},
		Log:     &Log{Format: "xml"},
	}

	err := Validate(bc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.database.Driver")
	assert.Contains(t, err.Error(), "enrollment.BaseURL")
	assert.Contains(t, err.Error(), "log.Format")
}
