package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/constants"
	"github.com/piresc/tallytrack/internal/pkg/database"
	"github.com/piresc/tallytrack/internal/pkg/logger"
	"github.com/piresc/tallytrack/internal/utils"
)

// RateLimiterConfig contains configuration for the rate limiter
type RateLimiterConfig struct {
	Redis  *database.RedisClient
	Prefix string
	Limit  int
	Period time.Duration
	Logger *logger.ZapLogger
}

// RateLimiter applies a fixed-window limit per client IP and route.
// Redis errors fail open so a cache outage never blocks voting.
func RateLimiter(config RateLimiterConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Limit <= 0 {
				return next(c)
			}

			key := fmt.Sprintf(constants.KeyRateLimit, fmt.Sprintf("%s:%s:%s", config.Prefix, c.Path(), c.RealIP()))

			count, err := config.Redis.IncrWindow(c.Request().Context(), key, config.Period)
			if err != nil {
				if config.Logger != nil {
					config.Logger.Warn("Rate limiter unavailable, allowing request",
						logger.String("key", key),
						logger.Err(err))
				}
				return next(c)
			}

			remaining := config.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > config.Limit {
				ttl := config.Redis.Client.TTL(c.Request().Context(), key).Val()
				if ttl < 0 {
					ttl = config.Period
				}
				c.Response().Header().Set("Retry-After", strconv.FormatInt(int64(ttl.Seconds()), 10))
				return utils.ErrorResponseHandler(c, http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}
