package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// KeyFunc picks the bucket a request is counted against. An empty key skips
// limiting for that request.
type KeyFunc func(c *gin.Context) string

func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUserID must run after AuthMiddleware.
func ByUserID(c *gin.Context) string {
	userID, ok := GetUserID(c)
	if !ok {
		return ""
	}
	return "user:" + userID
}

// RateLimiter is a fixed-window counter kept in Redis.
type RateLimiter struct {
	rdb    *redis.Client
	name   string
	limit  int
	window time.Duration
	key    KeyFunc
}

func NewRateLimiter(rdb *redis.Client, name string, limit int, window time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByClientIP
	}
	return &RateLimiter{
		rdb:    rdb,
		name:   name,
		limit:  limit,
		window: window,
		key:    key,
	}
}

// Middleware lets requests through when Redis is unavailable.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := l.key(c)
		if bucket == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s:%s", l.name, bucket)

		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := l.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			log.Printf("[CACHE] Rate limiter %s skipped: %v", l.name, err)
			c.Next()
			return
		}

		count := incr.Val()
		remaining := ttl.Val()

		// A key without expiry was just created, or lost its TTL.
		if remaining < 0 {
			if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
				log.Printf("[CACHE] Rate limiter %s expire failed, dropping key: %v", l.name, err)
				l.rdb.Del(ctx, key)
				c.Next()
				return
			}
			remaining = l.window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(l.limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(remaining).Unix(), 10))

		if count > int64(l.limit) {
			c.Header("Retry-After", strconv.Itoa(int(remaining.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Too many requests. Slow down!",
				"retry_in_s": int(remaining.Seconds()),
			})
			return
		}

		c.Next()
	}
}
