package conf

import "time"

// Bootstrap is the root configuration of the service.
type Bootstrap struct {
	Server     *Server
	Data       *Data
	Auth       *Auth
	Enrollment *Enrollment
	Breaker    *Breaker
	Quota      *Quota
	RateLimit  *RateLimit
	Notify     *Notify
	Log        *Log
}

// Server holds the listener settings for both transports.
type Server struct {
	Http *ServerHTTP
	Grpc *ServerGRPC
}

// ServerHTTP configures the Kratos HTTP server.
type ServerHTTP struct {
	Network string
	Addr    string
	Timeout time.Duration
}

// ServerGRPC configures the Kratos gRPC server.
type ServerGRPC struct {
	Network string
	Addr    string
	Timeout time.Duration
}

// Data holds storage settings.
type Data struct {
	Database *Database
	Redis    *Redis
}

// Database MySQL 连接配置
type Database struct {
	Driver string
	Source string
	// AutoMigrate 启动时自动建表/更新表结构
	AutoMigrate bool
}

// Redis 共享缓存/计数器配置
// An empty Addr disables Redis and every Redis-backed feature degrades to local behavior.
type Redis struct {
	Network      string
	Addr         string
	Password     string
	DB           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Auth configures user and service tokens.
type Auth struct {
	JwtSecret       string
	JwtExpires      time.Duration
	ServiceKey      string
	ServiceName     string
	ServiceTokenTTL time.Duration
}

// Enrollment configures the enrollment integration client.
type Enrollment struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
	// FailOpen 报名服务不可用时是否放行
	FailOpen bool
	ProxyURL string
}

// Breaker configures circuit breakers guarding remote calls.
type Breaker struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	// Shared 通过 Redis 共享熔断状态，所有实例可见
	Shared bool
}

// Quota configures quota accounting.
type Quota struct {
	PendingTTL time.Duration
	// ExpireCron is the cron spec (with seconds) of the pending expiry job.
	ExpireCron string
}

// RateLimit configures request limits.
type RateLimit struct {
	SubmitRPM int32
}

// Notify configures enrollment notifications.
type Notify struct {
	Brokers []string
	Topic   string
}

// Log configures the zap logger.
type Log struct {
	Level      string
	Format     string
	Env        string
	OutputFile string
}
