// Package data provides data access layer implementations.
// It handles database connections and data persistence.
package data

import (
	"CourseLane/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewRedisClient,
	NewCacheClient,
	NewMySQLClient,
)

// Data contains all data layer dependencies.
type Data struct {
	db *gorm.DB
	// redisClient is nil when Redis is not configured
	redisClient *redis.Client
	cache       CacheClient
}

// NewData creates a new Data instance with all data layer dependencies.
// Redis being unavailable does not prevent application startup (graceful degradation).
func NewData(c *conf.Data, logger log.Logger, db *gorm.DB, rdb *redis.Client, cache CacheClient) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	if rdb == nil {
		helper.Warn("Redis client is nil, shared cache, rate limiting and shared breaker state are disabled")
	}

	if db != nil && c != nil && c.Database != nil && c.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, nil, err
		}
		helper.Info("database schema migrated")
	}

	d := &Data{
		db:          db,
		redisClient: rdb,
		cache:       cache,
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		// MySQL and Redis are closed by their own provider cleanups
	}

	return d, cleanup, nil
}

// AutoMigrate creates or updates every table owned by the service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Course{}, &Enrollment{}, &Material{}, &AuditLog{})
}

// DB returns the gorm handle.
func (d *Data) DB() *gorm.DB {
	return d.db
}

// GetCache returns the cache client for repository use.
func (d *Data) GetCache() CacheClient {
	return d.cache
}

// GetRedisClient returns the Redis client for advanced operations.
func (d *Data) GetRedisClient() *redis.Client {
	return d.redisClient
}
