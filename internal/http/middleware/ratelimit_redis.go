package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"carvfi/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var (
	rlMu        sync.RWMutex
	redisClient *redis.Client
)

// UseRedis sets the client shared by the rate limiters. A nil client makes
// every limiter fail open.
func UseRedis(rc *redis.Client) {
	rlMu.Lock()
	defer rlMu.Unlock()
	redisClient = rc
}

func currentRedis() *redis.Client {
	rlMu.RLock()
	defer rlMu.RUnlock()
	return redisClient
}

// windowCounter is the part of the redis client a fixed window needs.
type windowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// hitWindow counts one request in the window stored at key. The first hit
// sets the TTL; if that fails the key is dropped again so it cannot outlive
// its window and lock the client out.
func hitWindow(ctx context.Context, rc windowCounter, key string, window time.Duration) (int64, error) {
	val, err := rc.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val != 1 {
		return val, nil
	}
	if err := rc.Expire(ctx, key, window).Err(); err != nil {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
		defer cancel()
		if derr := rc.Del(dctx, key).Err(); derr != nil {
			logger.Error("rate limit key left without ttl", "key", key, "error", derr)
		}
		return 0, fmt.Errorf("expire %s: %w", key, err)
	}
	return val, nil
}

// RedisRateLimit implements a fixed-window limiter per client IP using
// Redis INCR/EXPIRE.
// key format: rl:<scope>:<window_seconds>:<ip>
func RedisRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	windowSec := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		rc := currentRedis()
		if rc == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := "rl:" + scope + ":" + windowSec + ":" + c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		val, err := hitWindow(ctx, rc, key, window)
		if err != nil {
			// fail open
			logger.Warn("rate limiter unavailable", "scope", scope, "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		remaining := int64(maxRequests) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.Header("Retry-After", windowSec)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}
