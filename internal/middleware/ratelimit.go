package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/response"
)

// RateLimitConfig describes one fixed-window limiter: up to Points
// requests per Window; exceeding the budget blocks the client for
// BlockFor.
type RateLimitConfig struct {
	Enabled  bool
	Prefix   string
	Points   int
	Window   time.Duration
	BlockFor time.Duration
}

// RateLimit returns middleware enforcing a fixed-window per-IP limit
// backed by Redis. Redis failures let the request through.
func RateLimit(cfg RateLimitConfig, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}

		blockKey := fmt.Sprintf("%s:block:%s", cfg.Prefix, ip)
		ttl, err := rdb.TTL(ctx, blockKey).Result()
		if err != nil {
			logger.Warn("rate limiter redis error", zap.String("key", blockKey), zap.Error(err))
			c.Next()
			return
		}
		if ttl > 0 {
			reject(c, ttl)
			return
		}

		countKey := fmt.Sprintf("%s:count:%s", cfg.Prefix, ip)
		count, err := rdb.Incr(ctx, countKey).Result()
		if err != nil {
			logger.Warn("rate limiter redis error", zap.String("key", countKey), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, countKey, cfg.Window).Err(); err != nil {
				logger.Warn("rate limiter redis error", zap.String("key", countKey), zap.Error(err))
			}
		}

		if count > int64(cfg.Points) {
			if err := rdb.Set(ctx, blockKey, "1", cfg.BlockFor).Err(); err != nil {
				logger.Warn("rate limiter redis error", zap.String("key", blockKey), zap.Error(err))
			}
			reject(c, cfg.BlockFor)
			return
		}

		remaining := int64(cfg.Points) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Points))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Next()
	}
}

func reject(c *gin.Context, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 0 {
		secs = 0
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	response.Error(c, appErrors.ErrRateLimited)
	c.Abort()
}
