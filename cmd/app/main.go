package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/db"
	httpServer "task_manager/internal/http"
	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/repository/memory"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type stores struct {
	users   service.UserStore
	tasks   service.TaskStore
	audit   service.AuditStore
	dbCheck handlers.CheckFunc
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config) stores {
	if cfg.InMemory() {
		logger.Warn("using in-memory stores, data is lost on restart")
		return stores{
			users:   memory.NewUserStore(),
			tasks:   memory.NewTaskStore(),
			audit:   memory.NewAuditStore(),
			dbCheck: func(context.Context) error { return nil },
			close:   func() {},
		}
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		logger.Fatal("migrations failed", "error", err)
	}
	return stores{
		users:   repository.NewUserRepository(pool),
		tasks:   repository.NewTaskRepository(pool),
		audit:   repository.NewAuditRepository(pool),
		dbCheck: pool.Ping,
		close:   pool.Close,
	}
}

// openLimiter prefers Redis so limits hold across instances; without it each
// process counts on its own.
func openLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, map[string]handlers.CheckFunc, func()) {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryLimiter(), nil, func() {}
	}
	client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory rate limiting", "error", err)
		return middleware.NewMemoryLimiter(), nil, func() {}
	}
	checks := map[string]handlers.CheckFunc{
		"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	return middleware.NewRedisLimiter(client), checks, func() { _ = client.Close() }
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()
	st := openStores(ctx, cfg)
	defer st.close()

	limiter, optionalChecks, closeLimiter := openLimiter(ctx, cfg)
	defer closeLimiter()

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)
	h := handlers.NewHandler(
		service.NewAuthService(st.users, tokens),
		service.NewTaskService(st.tasks),
		service.NewAuditService(st.audit),
	)
	health := handlers.NewHealthHandler(st.dbCheck, cfg.AppVersion, optionalChecks)

	r, err := httpServer.NewRouter(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("invalid router configuration", "error", err)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, h, health, limiter, httpServer.RateLimits{
		API:        cfg.APIRateLimit,
		APIWindow:  cfg.APIRateWindow,
		Auth:       cfg.AuthRateLimit,
		AuthWindow: cfg.AuthRateWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
