package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"minesweeper_webapp/internal/logger"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client the limiters use.
// When addr is empty or the ping fails the client stays nil and every
// limiter fails open, keeping the server available without Redis.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("rate limiter redis unreachable, running fail-open", "addr", addr, "error", err)
		return
	}
	redisClient = client
}

// RedisRateLimit is a fixed-window per-IP limiter over Redis INCR/EXPIRE.
// Key format: rl:<window_seconds>:<ip>.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allowWindow(c, key, maxRequests, window, c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// allowWindow does one fixed-window check. Redis errors fail open with a
// header so blocked windows are visible in traces.
func allowWindow(c *gin.Context, key string, maxRequests int, window time.Duration, endpoint string) bool {
	ctx := context.Background()
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	if val > int64(maxRequests) {
		rateLimitBlocked.WithLabelValues(endpoint).Inc()
		return false
	}
	rateLimitSeen.WithLabelValues(endpoint).Inc()
	return true
}
