package db

import (
	"context"
	"fmt"
	"time"

	"task_manager/internal/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a client and verifies it with PING. Callers decide
// whether a failure is fatal.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	logger.Info("redis connected", "addr", addr)
	return client, nil
}
