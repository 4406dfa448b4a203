package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/voltai/billing-service/pkg/util/errorutil"
)

// RateLimitConfig configures the Redis fixed-window limiter.
type RateLimitConfig struct {
	Redis     *redis.Client
	Limit     int
	Window    time.Duration
	KeyPrefix string
	Logger    *zap.Logger
	Now       func() time.Time
}

// RateLimitMiddleware allows Limit requests per client IP per Window. Requests
// pass through when Redis is missing or failing.
func RateLimitMiddleware(cfg RateLimitConfig) fiber.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:login:"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	windowNanos := int64(cfg.Window)

	return func(c *fiber.Ctx) error {
		if cfg.Redis == nil || cfg.Limit <= 0 {
			return c.Next()
		}

		now := cfg.Now()
		bucket := now.UnixNano() / windowNanos
		key := cfg.KeyPrefix + c.IP() + ":" + strconv.FormatInt(bucket, 10)

		ctx := c.UserContext()
		pipe := cfg.Redis.Pipeline()
		count := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, cfg.Window*2)
		if _, err := pipe.Exec(ctx); err != nil {
			cfg.Logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		if count.Val() > int64(cfg.Limit) {
			remain := time.Duration(windowNanos - now.UnixNano()%windowNanos)
			seconds := int(remain.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return apperrors.NewTooManyRequests("too many login attempts")
		}
		return c.Next()
	}
}
