package middlewares

import (
	"net/http"
	"os"
	"time"

	"gramseva-be/config"

	"github.com/gin-gonic/gin"
)

// ProblemRateLimiter caps submissions per identity per 24 hours. Anonymous
// callers are keyed by client IP instead.
func ProblemRateLimiter(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userIDVal, exists := c.Get("user_id"); exists {
			if userID, ok := userIDVal.(string); ok && userID != "" {
				key = userID
			}
		}

		ctx := config.Ctx
		queuePrefix := os.Getenv("REDIS_QUEUE_FOR_PROBLEM_LIMIT")
		if queuePrefix == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Redis queue not configured"})
			c.Abort()
			return
		}

		// Create individual key for each caller
		userKey := queuePrefix + ":" + key

		// Increment caller's count with TTL
		count, err := config.RedisClient.Incr(ctx, userKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			err = config.RedisClient.Expire(ctx, userKey, 24*time.Hour).Err()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		// Check if caller exceeded limit
		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
