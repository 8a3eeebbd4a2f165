package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-rise/internal/adapters/llm"
	"github.com/comitanigiacomo/kanso-rise/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-rise/internal/config"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
	"github.com/comitanigiacomo/kanso-rise/internal/core/workers"
)

type stores struct {
	users     domain.UserRepository
	goals     domain.GoalRepository
	logs      domain.DailyLogRepository
	summaries domain.WeeklySummaryRepository
}

type app struct {
	router *gin.Engine
	worker *workers.StreakWorker
}

func newApp(cfg *config.Config, st stores, db *sqlx.DB, rdb *redis.Client, clock services.Clock) *app {
	if rdb != nil {
		st.goals = repository.NewCachedGoalRepository(st.goals, rdb)
	}

	worker := workers.NewStreakWorker(st.goals, st.logs, clock)

	gateway := llm.NewClient(llm.Config{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		BaseURL:   cfg.Anthropic.BaseURL,
		Timeout:   cfg.Anthropic.Timeout,
	})
	if cfg.Anthropic.APIKey == "" {
		log.Println("ANTHROPIC_API_KEY not set: coach routes will answer 503")
	}

	authService := services.NewAuthService(st.users)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, st.users)
	goalService := services.NewGoalService(st.goals, cfg.DefaultTimezone)
	checklistService := services.NewChecklistService(st.goals, st.logs, worker, clock)
	dashboardService := services.NewDashboardService(st.goals, st.logs, clock)
	coachService := services.NewCoachService(gateway, st.goals, st.logs, st.summaries, clock)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService, tokenService),
		GoalHandler:      adapterHTTP.NewGoalHandler(goalService),
		ChecklistHandler: adapterHTTP.NewChecklistHandler(checklistService),
		DashboardHandler: adapterHTTP.NewDashboardHandler(dashboardService),
		CoachHandler:     adapterHTTP.NewCoachHandler(coachService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            rdb,
		RateLimits: adapterHTTP.RateLimits{
			Limit:       cfg.RateLimit,
			Window:      cfg.RateWindow,
			CoachLimit:  cfg.CoachRateLimit,
			CoachWindow: cfg.CoachRateWindow,
		},
		StartTime: time.Now(),
	})

	return &app{router: router, worker: worker}
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	logCloser, err := cfg.OpenLog()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer logCloser.Close()

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("Critical: %v", err)
	}

	log.Println("Database connected successfully.")

	rdb, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		log.Printf("[CACHE] Redis unavailable, running without cache and rate limits: %v", err)
	} else {
		defer rdb.Close()
	}

	a := newApp(cfg, stores{
		users:     repository.NewPostgresUserRepository(db),
		goals:     repository.NewPostgresGoalRepository(db),
		logs:      repository.NewPostgresDailyLogRepository(db),
		summaries: repository.NewPostgresWeeklySummaryRepository(db),
	}, db, rdb, services.SystemClock)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	a.worker.Start(workerCtx)

	// The coach routes wait on the model, so the write timeout must outlast it.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Anthropic.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Rise running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
	}
	stopWorker()

	log.Println("Server stopped gracefully.")
}
