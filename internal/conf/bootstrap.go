// Package conf provides configuration management using Viper.
// It supports loading configuration from YAML files and environment variables,
// with CLI flag overrides.
package conf

import (
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

// NewBootstrap creates and initializes a Bootstrap configuration.
// It loads configuration from the specified config file path, applies defaults,
// and allows overrides from environment variables prefixed with COURSELANE_.
//
// Configuration priority: Environment variables > Config file > Defaults
//
// Required environment variables:
//   - MYSQL_DSN or COURSELANE_DATA_DATABASE_SOURCE: MySQL connection string
//   - JWT_SECRET or COURSELANE_AUTH_JWT_SECRET: token signing secret
//   - SERVICE_KEY or COURSELANE_AUTH_SERVICE_KEY: inter-service API key
func NewBootstrap(configPath string) (*Bootstrap, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("COURSELANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Direct environment variable names for the secrets
	_ = v.BindEnv("data.database.source", "MYSQL_DSN", "COURSELANE_DATA_DATABASE_SOURCE")
	_ = v.BindEnv("data.redis.addr", "REDIS_ADDR", "COURSELANE_DATA_REDIS_ADDR")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET", "COURSELANE_AUTH_JWT_SECRET")
	_ = v.BindEnv("auth.service_key", "SERVICE_KEY", "COURSELANE_AUTH_SERVICE_KEY")
	_ = v.BindEnv("enrollment.base_url", "ENROLLMENT_SERVICE_URL", "COURSELANE_ENROLLMENT_BASE_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	bc := &Bootstrap{
		Server: &Server{
			Http: &ServerHTTP{
				Network: v.GetString("server.http.network"),
				Addr:    v.GetString("server.http.addr"),
				Timeout: v.GetDuration("server.http.timeout"),
			},
			Grpc: &ServerGRPC{
				Network: v.GetString("server.grpc.network"),
				Addr:    v.GetString("server.grpc.addr"),
				Timeout: v.GetDuration("server.grpc.timeout"),
			},
		},
		Data: &Data{
			Database: &Database{
				Driver:      v.GetString("data.database.driver"),
				Source:      v.GetString("data.database.source"),
				AutoMigrate: v.GetBool("data.database.auto_migrate"),
			},
			Redis: &Redis{
				Network:      v.GetString("data.redis.network"),
				Addr:         v.GetString("data.redis.addr"),
				Password:     v.GetString("data.redis.password"),
				DB:           v.GetInt("data.redis.db"),
				ReadTimeout:  v.GetDuration("data.redis.read_timeout"),
				WriteTimeout: v.GetDuration("data.redis.write_timeout"),
			},
		},
		Auth: &Auth{
			JwtSecret:       v.GetString("auth.jwt_secret"),
			JwtExpires:      v.GetDuration("auth.jwt_expires"),
			ServiceKey:      v.GetString("auth.service_key"),
			ServiceName:     v.GetString("auth.service_name"),
			ServiceTokenTTL: v.GetDuration("auth.service_token_ttl"),
		},
		Enrollment: &Enrollment{
			BaseURL:   v.GetString("enrollment.base_url"),
			Timeout:   v.GetDuration("enrollment.timeout"),
			CacheTTL:  v.GetDuration("enrollment.cache_ttl"),
			CacheSize: v.GetInt("enrollment.cache_size"),
			FailOpen:  v.GetBool("enrollment.fail_open"),
			ProxyURL:  v.GetString("enrollment.proxy_url"),
		},
		Breaker: &Breaker{
			FailureThreshold: v.GetInt("breaker.failure_threshold"),
			ResetTimeout:     v.GetDuration("breaker.reset_timeout"),
			Shared:           v.GetBool("breaker.shared"),
		},
		Quota: &Quota{
			PendingTTL: v.GetDuration("quota.pending_ttl"),
			ExpireCron: v.GetString("quota.expire_cron"),
		},
		RateLimit: &RateLimit{
			SubmitRPM: v.GetInt32("rate_limit.submit_rpm"),
		},
		Notify: &Notify{
			Brokers: v.GetStringSlice("notify.brokers"),
			Topic:   v.GetString("notify.topic"),
		},
		Log: &Log{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Env:        v.GetString("log.env"),
			OutputFile: v.GetString("log.output_file"),
		},
	}

	if err := Validate(bc); err != nil {
		return nil, err
	}

	return bc, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.network", "tcp")
	v.SetDefault("server.http.addr", ":8080")
	v.SetDefault("server.http.timeout", 30*time.Second)

	v.SetDefault("server.grpc.network", "tcp")
	v.SetDefault("server.grpc.addr", ":9000")
	v.SetDefault("server.grpc.timeout", 30*time.Second)

	v.SetDefault("data.database.driver", "mysql")
	// Note: data.database.source (MYSQL_DSN) is required from environment

	v.SetDefault("data.redis.network", "tcp")
	v.SetDefault("data.redis.addr", "127.0.0.1:6379")
	v.SetDefault("data.redis.db", 0)
	v.SetDefault("data.redis.read_timeout", 200*time.Millisecond)
	v.SetDefault("data.redis.write_timeout", 200*time.Millisecond)

	v.SetDefault("auth.jwt_expires", 24*time.Hour)
	v.SetDefault("auth.service_name", "course-service")
	v.SetDefault("auth.service_token_ttl", time.Minute)

	v.SetDefault("enrollment.base_url", "http://127.0.0.1:8080")
	v.SetDefault("enrollment.timeout", 5*time.Second)
	v.SetDefault("enrollment.cache_ttl", 5*time.Minute)
	v.SetDefault("enrollment.cache_size", 10000)
	v.SetDefault("enrollment.fail_open", true)

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.reset_timeout", 30*time.Second)
	v.SetDefault("breaker.shared", false)

	v.SetDefault("quota.pending_ttl", 48*time.Hour)
	v.SetDefault("quota.expire_cron", "0 0 * * * *")

	v.SetDefault("rate_limit.submit_rpm", 30)

	v.SetDefault("notify.topic", "notify.enrollment")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that all required configuration fields are present and valid.
// It returns an error listing all invalid fields.
func Validate(bc *Bootstrap) error {
	if bc == nil {
		return fmt.Errorf("configuration is nil")
	}

	var problems []string
	collect := func(section string, err error) {
		if err == nil {
			return
		}
		if errs, ok := err.(validation.Errors); ok {
			for field, fieldErr := range errs {
				problems = append(problems, fmt.Sprintf("%s.%s: %v", section, field, fieldErr))
			}
			return
		}
		problems = append(problems, fmt.Sprintf("%s: %v", section, err))
	}

	if bc.Data == nil || bc.Data.Database == nil {
		problems = append(problems, "data.database: section is required")
	} else {
		collect("data.database", validation.ValidateStruct(bc.Data.Database,
			validation.Field(&bc.Data.Database.Source, validation.Required.Error("is required (MYSQL_DSN)")),
			validation.Field(&bc.Data.Database.Driver, validation.In("mysql")),
		))
	}

	if bc.Auth == nil {
		problems = append(problems, "auth: section is required")
	} else {
		collect("auth", validation.ValidateStruct(bc.Auth,
			validation.Field(&bc.Auth.JwtSecret, validation.Required.Error("is required (JWT_SECRET)")),
			validation.Field(&bc.Auth.ServiceKey, validation.Required.Error("is required (SERVICE_KEY)")),
			validation.Field(&bc.Auth.ServiceTokenTTL, validation.Min(time.Second)),
		))
	}

	if bc.Enrollment != nil {
		collect("enrollment", validation.ValidateStruct(bc.Enrollment,
			validation.Field(&bc.Enrollment.BaseURL, validation.Required, is.URL),
			validation.Field(&bc.Enrollment.Timeout, validation.Required),
			validation.Field(&bc.Enrollment.CacheTTL, validation.Required),
			validation.Field(&bc.Enrollment.CacheSize, validation.Min(1)),
		))
	}

	if bc.Breaker != nil {
		collect("breaker", validation.ValidateStruct(bc.Breaker,
			validation.Field(&bc.Breaker.FailureThreshold, validation.Required, validation.Min(1)),
			validation.Field(&bc.Breaker.ResetTimeout, validation.Required),
		))
	}

	if bc.Log != nil {
		collect("log", validation.ValidateStruct(bc.Log,
			validation.Field(&bc.Log.Format, validation.In("json", "console")),
		))
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}

	return nil
}
