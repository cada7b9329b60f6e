package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the counter store is unreachable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// Rule is a fixed-window limit shared by every route registered under Name.
type Rule struct {
	Name   string
	Max    int
	Window time.Duration
	Policy FailPolicy
}

// Decision is the outcome of counting one request against a Rule.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

var errNoLimiterStore = errors.New("rate limit store not configured")

// limitsEnforced is false for environments that must never be throttled.
func limitsEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test", "stress":
		return false
	}
	return true
}

func limiterKey(rule Rule, subject string) string {
	return "rl:" + rule.Name + ":" + subject
}

// Allow counts a request by subject against rule. The window starts with the
// first request and the counter expires with it.
func Allow(ctx context.Context, rdb *redis.Client, rule Rule, subject string) (Decision, error) {
	if !limitsEnforced() {
		return Decision{Allowed: true, Remaining: rule.Max}, nil
	}
	if rdb == nil {
		return Decision{}, errNoLimiterStore
	}

	key := limiterKey(rule, subject)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("ratelimit").Inc()
		return Decision{}, err
	}

	remainingWindow := ttl.Val()
	if remainingWindow <= 0 {
		if err := rdb.PExpire(ctx, key, rule.Window).Err(); err != nil {
			observability.RedisErrorRate.WithLabelValues("ratelimit_expire").Inc()
		}
		remainingWindow = rule.Window
	}

	count := int(incr.Val())
	if count > rule.Max {
		return Decision{RetryAfter: remainingWindow}, nil
	}
	return Decision{Allowed: true, Remaining: rule.Max - count}, nil
}

// rateLimitSubject keys authenticated callers by user and everyone else by IP.
func rateLimitSubject(c *fiber.Ctx) string {
	if uid, ok := c.Locals(UserIDLocal).(string); ok && uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.IP()
}

// RateLimit enforces rule on the routes it is mounted on.
func RateLimit(rdb *redis.Client, rule Rule) fiber.Handler {
	if rule.Name == "" {
		rule.Name = "default"
	}
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		d, err := Allow(ctx, rdb, rule, rateLimitSubject(c))
		if err != nil {
			if rule.Policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(ctx, "rate limiter unavailable",
				slog.String("rule", rule.Name),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "rate limit unavailable",
				Code:  models.CodeInternal,
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			seconds := int(d.RetryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  models.CodeRateLimited,
			})
		}
		return c.Next()
	}
}
