package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Limiter is a fixed-window rate limiter backed by a shared Redis counter,
// so the limit holds across multiple server instances. Counters carry a TTL
// equal to the window; no process memory is involved.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
	cfg    config.RateLimitConfig
}

// NewLimiter constructs a limiter.
func NewLimiter(client *redis.Client, logger *zap.Logger, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{client: client, logger: logger, cfg: cfg}
}

// Middleware limits requests per caller for the named action. The caller key
// is the authenticated user id when present, otherwise the client IP. When
// Redis is unreachable the request is allowed; availability wins over
// strictness for a support tool.
func (l *Limiter) Middleware(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil || l.client == nil || !l.cfg.Enabled {
			return c.Next()
		}

		caller := c.IP()
		if id, ok := c.Locals("auth_principal_id").(string); ok && id != "" {
			caller = id
		}
		window := time.Now().Unix() / int64(l.cfg.WindowSeconds)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", action, caller, window)

		ctx := c.UserContext()
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			l.client.Expire(ctx, key, time.Duration(l.cfg.WindowSeconds)*time.Second)
		}
		if count > int64(l.cfg.MaxRequests) {
			return apperrors.NewRateLimited()
		}
		return c.Next()
	}
}
