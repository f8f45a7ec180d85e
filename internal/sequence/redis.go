package sequence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisCounter uses INCR on sequence:<name>
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Next(ctx context.Context, name string) (int64, error) {
	return c.client.Incr(ctx, "sequence:"+name).Result()
}
