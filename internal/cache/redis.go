// Package cache wraps the Redis client used for pub/sub and the persisted
// session marker.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis at addr. A failed ping is not fatal: the
// application runs without cache, pub/sub fan-out, and session restore.
func NewClient(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis connection failed, continuing without cache", "addr", addr, "error", err)
		return nil
	}

	slog.Info("redis connected", "addr", addr)
	return client
}
