package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PlayerRateLimit limits game moves per player, not per IP, so one busy
// household does not starve everyone behind the same address. Requires
// the JWT middleware to have run.
func PlayerRateLimit(maxMoves int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		playerID := c.GetString("player_id")
		if playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "move_rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + playerID
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxMoves))
		if !allowWindow(c, key, maxMoves, window, "moves:"+c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "move rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
