package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Backend names accepted by NewCounter
const (
	BackendPostgres = "postgres"
	BackendTable    = "table"
	BackendRedis    = "redis"
)

// NewCounter builds the counter for backend
// The postgres backend shares db's connection pool.
func NewCounter(ctx context.Context, backend string, db *gorm.DB, client *redis.Client) (Counter, error) {
	switch backend {
	case BackendPostgres, "":
		if db == nil {
			return nil, errors.New("postgres sequence backend requires a database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		return NewPostgresCounter(ctx, sqlDB)
	case BackendTable:
		return NewTableCounter(db)
	case BackendRedis:
		if client == nil {
			return nil, errors.New("redis sequence backend requires a redis client")
		}
		return NewRedisCounter(client), nil
	default:
		return nil, fmt.Errorf("unknown sequence backend %q", backend)
	}
}
