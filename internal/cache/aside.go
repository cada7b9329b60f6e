package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside implements read-through caching: a hit decodes into dst, a miss runs
// load (which must populate dst) and stores the JSON result under key for ttl.
// Redis failures degrade to calling load directly.
func Aside(ctx context.Context, key string, dst any, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	keyspace := keyspaceOf(key)
	ctx, span := observability.StartRedisSpan(ctx, "get")
	raw, err := client.Get(ctx, key).Bytes()
	observability.EndSpan(span, ignoreNil(err))

	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(keyspace, "hit").Inc()
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	observability.CacheLookups.WithLabelValues(keyspace, "miss").Inc()

	if err := load(); err != nil {
		return err
	}

	payload, err := json.Marshal(dst)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

func ignoreNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func keyspaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
