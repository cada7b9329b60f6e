// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the reachability check made at startup.
const pingTimeout = 5 * time.Second

var client *redis.Client

// errorHook counts failed commands by name. redis.Nil is a miss, not a failure.
type errorHook struct{}

func (errorHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// parseOptions accepts either a redis:// URL or a bare host:port.
func parseOptions(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("empty redis address")
	}
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// Connect opens an instrumented client and verifies it answers PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := parseOptions(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address: %w", err)
	}
	c := redis.NewClient(opts)
	c.AddHook(errorHook{})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return c, nil
}

// InitRedis installs the process-wide client. When Redis cannot be reached the
// client stays nil and callers fall back to uncached reads.
func InitRedis(addr string) {
	c, err := Connect(context.Background(), addr)
	if err != nil {
		middleware.Logger.Warn("continuing without cache", slog.String("addr", addr), slog.String("error", err.Error()))
		client = nil
		return
	}
	middleware.Logger.Info("Redis connected successfully")
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the Redis client. Tests use it to point the cache at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorHook{})
	}
	client = c
}
