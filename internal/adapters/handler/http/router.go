package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
)

type RateLimits struct {
	Limit       int
	Window      time.Duration
	CoachLimit  int
	CoachWindow time.Duration
}

type RouterDependencies struct {
	AuthHandler      *AuthHandler
	GoalHandler      *GoalHandler
	ChecklistHandler *ChecklistHandler
	DashboardHandler *DashboardHandler
	CoachHandler     *CoachHandler
	TokenService     *services.TokenService
	DB               *sqlx.DB
	Redis            *redis.Client
	RateLimits       RateLimits
	StartTime        time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	if deps.Redis != nil && deps.RateLimits.Limit > 0 {
		global := middleware.NewRateLimiter(deps.Redis, "global", deps.RateLimits.Limit, deps.RateLimits.Window, middleware.ByClientIP)
		router.Use(global.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "connected"
		if deps.Redis == nil || deps.Redis.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "unreachable"
		}

		statusCode := http.StatusOK
		status := "ok"
		if dbStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
			status = "unavailable"
		} else if redisStatus == "unreachable" {
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.GoalHandler.RegisterRoutes(protected)
		deps.ChecklistHandler.RegisterRoutes(protected)
		deps.DashboardHandler.RegisterRoutes(protected)
	}

	coach := protected.Group("")
	if deps.Redis != nil && deps.RateLimits.CoachLimit > 0 {
		perUser := middleware.NewRateLimiter(deps.Redis, "coach", deps.RateLimits.CoachLimit, deps.RateLimits.CoachWindow, middleware.ByUserID)
		coach.Use(perUser.Middleware())
	}
	deps.CoachHandler.RegisterRoutes(coach)

	return router
}
