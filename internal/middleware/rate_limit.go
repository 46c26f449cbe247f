package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// KeyFunc picks the bucket a request is counted against. ok=false rejects
// the request as unauthenticated.
type KeyFunc func(c *gin.Context) (key string, ok bool)

// ByUser counts per authenticated user. It must run after AuthMiddleware.
func ByUser(c *gin.Context) (string, bool) {
	id, ok := UserID(c)
	if !ok {
		return "", false
	}
	return id.String(), true
}

// ByClientIP counts per client address, for routes used before sign-in.
func ByClientIP(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

// RateLimitConfig is one fixed window: at most Limit requests per Window.
type RateLimitConfig struct {
	Window    time.Duration
	Limit     int
	KeyPrefix string
	Key       KeyFunc
}

// RateLimiter is a fixed-window counter kept in Redis.
type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewRateLimiter defaults Key to ByUser.
func NewRateLimiter(client redis.Cmdable, cfg RateLimitConfig, log logrus.FieldLogger) *RateLimiter {
	if cfg.Key == nil {
		cfg.Key = ByUser
	}
	return &RateLimiter{
		redis:  client,
		config: cfg,
		log:    log.WithField("limiter", cfg.KeyPrefix),
		now:    time.Now,
	}
}

// NewUploadRateLimiter limits media uploads per user.
func NewUploadRateLimiter(client redis.Cmdable, limit int, window time.Duration, log logrus.FieldLogger) *RateLimiter {
	return NewRateLimiter(client, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:uploads",
		Key:       ByUser,
	}, log)
}

// NewAuthRateLimiter limits sign-up and sign-in attempts per client IP.
func NewAuthRateLimiter(client redis.Cmdable, limit int, window time.Duration, log logrus.FieldLogger) *RateLimiter {
	return NewRateLimiter(client, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:auth",
		Key:       ByClientIP,
	}, log)
}

// RateLimitMiddleware enforces the window. Redis failures let the request
// through with an X-RateLimit-Error header.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := rl.config.Key(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		allowed, remaining, reset, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			rl.log.WithError(err).WithField("key", key).Warn("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			retryAfter := int(reset.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("limit of %d requests per %v reached", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

// bucket is the Redis key for key in the current window, and when that
// window ends.
func (rl *RateLimiter) bucket(key string) (string, time.Time) {
	start := rl.now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, start.Unix()), start.Add(rl.config.Window)
}

func (rl *RateLimiter) remaining(count int) int {
	if left := rl.config.Limit - count; left > 0 {
		return left
	}
	return 0
}

// IsAllowed counts one request for key and reports whether it fits, how many
// are left and when the window resets.
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	redisKey, reset := rl.bucket(key)

	pipe := rl.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incr.Val())
	return count <= rl.config.Limit, rl.remaining(count), reset, nil
}

// Remaining reports what is left for key in the current window without
// counting a request.
func (rl *RateLimiter) Remaining(ctx context.Context, key string) (int, time.Time, error) {
	redisKey, reset := rl.bucket(key)

	count, err := rl.redis.Get(ctx, redisKey).Int()
	if errors.Is(err, redis.Nil) {
		return rl.config.Limit, reset, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return rl.remaining(count), reset, nil
}
