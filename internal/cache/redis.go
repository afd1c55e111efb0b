// Package cache implements the post snapshot cache and the trending ranking on Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialmesh/internal/config"
	"socialmesh/internal/middleware"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient builds a Redis client for addr with the metrics hook installed.
func NewClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	client.AddHook(metricsHook{})
	return client
}

// Connect creates the shared Redis client and verifies it answers PING.
// Unlike a best-effort cache, the ranking structure lives only here, so an
// unreachable server is a startup failure.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := NewClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cannot connect to redis at %s: %w", cfg.RedisAddr(), err)
	}

	middleware.Logger.Info("Redis connected successfully")
	return client, nil
}
