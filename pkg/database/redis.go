package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stockroom/pkg/logger"
)

// NewRedisClient connects to Redis and returns nil when it cannot be reached,
// leaving callers to run without cache, rate limiting or Redis sequences.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", addr).
			Msg("Failed to connect to Redis")
		_ = client.Close()
		return nil
	}

	logger.Logger.Info().
		Str("redis_addr", addr).
		Msg("Connected to Redis")
	return client
}
