package middleware

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter implements a fixed-window counter shared across API
// instances. The key is created with its TTL and incremented in one
// MULTI/EXEC, so a counter can never outlive its window.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (r *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// SET NX EX opens the window; INCR keeps the TTL
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
