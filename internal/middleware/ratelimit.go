package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/juju/clock"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/fullreservas/reservas-api/internal/dto"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Prefix   string
	Clock    clock.Clock
}

// RateLimit counts requests per client IP in fixed windows kept in redis.
// A nil client disables it, and redis errors let the request through.
func RateLimit(rdb redis.Cmdable, cfg RateLimitConfig) echo.MiddlewareFunc {
	if rdb == nil || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := cfg.Clock.Now()
			window := now.UnixNano() / int64(cfg.Window)
			key := fmt.Sprintf("%s:ip:%s:%d", cfg.Prefix, c.RealIP(), window)
			ctx := c.Request().Context()

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				logger.Warningf("rate limit: incr %s: %v", key, err)
				return next(c)
			}
			if count == 1 {
				if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
					logger.Warningf("rate limit: expire %s: %v", key, err)
				}
			}

			remaining := max(int64(cfg.Requests)-count, 0)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Requests) {
				reset := time.Unix(0, (window+1)*int64(cfg.Window))
				secs := int(reset.Sub(now).Round(time.Second) / time.Second)
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				return c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Message: "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
