package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis with a bounded retry loop. Redis is
// a cache here, not a store, but a dead address at boot is still a
// deploy error worth failing fast on.
func NewRedisClient(addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	const maxRetries = 5
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		cancel()

		if err == nil {
			logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("attempt", attempt))
			return client, nil
		}

		_ = client.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, maxRetries, err)
		logger.Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt), zap.Int("maxRetries", maxRetries), zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}
