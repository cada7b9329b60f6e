package cache

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"
)

// Keyspace is a family of cache entries sharing a key prefix and lifetime.
type Keyspace struct {
	Prefix string
	TTL    time.Duration
}

// Key returns the entry key for id.
func (k Keyspace) Key(id string) string {
	return k.Prefix + ":" + id
}

// ProfileTTL is the lifetime of a cached profile.
const ProfileTTL = 5 * time.Minute

// Profiles caches public user profiles. Entries are dropped when the user
// changes their profile or deletes the account.
var Profiles = Keyspace{Prefix: "profile", TTL: ProfileTTL}

// ProfileKey returns the cache key of a user's public profile.
func ProfileKey(userID string) string {
	return Profiles.Key(userID)
}

// Invalidate deletes keys. Failures are logged; a stale entry expires on its own.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	ctx, span := observability.StartRedisSpan(ctx, "del")
	err := client.Del(ctx, keys...).Err()
	observability.EndSpan(span, err)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateUser drops every cached view of the user.
func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, ProfileKey(userID))
}
