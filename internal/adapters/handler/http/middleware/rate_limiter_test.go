package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestRedis(t *testing.T) *redis.Client {
	_ = godotenv.Load("../../../../../.env")

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(ctx)
	return rdb
}

func newLimitedRouter(limiter *RateLimiter, userID string) *gin.Engine {
	router := gin.New()
	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(ContextUserIDKey, userID)
			c.Next()
		})
	}
	router.Use(limiter.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "passed")
	})
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Success: Requests under the limit pass with headers", func(t *testing.T) {
		rdb.FlushDB(ctx)

		limit := 5
		router := newLimitedRouter(NewRateLimiter(rdb, "global", limit, time.Minute, ByClientIP), "")

		for i := 1; i <= limit; i++ {
			w := hit(router, "192.168.1.100")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, fmt.Sprintf("%d", limit), w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, fmt.Sprintf("%d", limit-i), w.Header().Get("X-RateLimit-Remaining"))
		}

		ttl, err := rdb.TTL(ctx, "rate_limit:global:ip:192.168.1.100").Result()
		assert.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Fail: Requests over the limit are blocked", func(t *testing.T) {
		rdb.FlushDB(ctx)

		router := newLimitedRouter(NewRateLimiter(rdb, "global", 2, time.Minute, ByClientIP), "")
		ip := "192.168.1.101"

		assert.Equal(t, http.StatusOK, hit(router, ip).Code, "Request 1 should pass")
		assert.Equal(t, http.StatusOK, hit(router, ip).Code, "Request 2 should pass")

		w := hit(router, ip)
		assert.Equal(t, http.StatusTooManyRequests, w.Code, "Request 3 should be blocked")
		assert.Contains(t, w.Body.String(), "Too many requests")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusOK, hit(router, "192.168.1.102").Code, "Other clients keep their own bucket")
	})

	t.Run("Success: Per-user buckets are independent of the client IP", func(t *testing.T) {
		rdb.FlushDB(ctx)

		alice := newLimitedRouter(NewRateLimiter(rdb, "coach", 1, time.Hour, ByUserID), "alice")
		bob := newLimitedRouter(NewRateLimiter(rdb, "coach", 1, time.Hour, ByUserID), "bob")

		assert.Equal(t, http.StatusOK, hit(alice, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(alice, "10.0.0.2").Code)
		assert.Equal(t, http.StatusOK, hit(bob, "10.0.0.1").Code)
	})
}

func TestRateLimiter_Unit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success: Fails open when Redis is down", func(t *testing.T) {
		badRdb := redis.NewClient(&redis.Options{
			Addr:        "localhost:9999",
			DialTimeout: 200 * time.Millisecond,
		})
		defer badRdb.Close()

		router := newLimitedRouter(NewRateLimiter(badRdb, "global", 5, time.Minute, ByClientIP), "")

		w := hit(router, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "passed", w.Body.String())
	})

	t.Run("Success: Empty key skips limiting", func(t *testing.T) {
		badRdb := redis.NewClient(&redis.Options{Addr: "localhost:9999"})
		defer badRdb.Close()

		router := newLimitedRouter(NewRateLimiter(badRdb, "coach", 0, time.Minute, ByUserID), "")

		w := hit(router, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	})
}
