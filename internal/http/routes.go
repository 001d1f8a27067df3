package http

import (
	"fmt"
	"time"

	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RateLimits bounds requests per fixed window. A zero limit disables that limiter.
type RateLimits struct {
	API        int
	APIWindow  time.Duration
	Auth       int
	AuthWindow time.Duration
}

// NewRouter builds the engine with the base middleware. Only the listed
// proxies may set the client address via X-Forwarded-For; with none, gin
// uses the connection's remote address.
func NewRouter(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(middleware.RequestID(), middleware.Metrics(), gin.Recovery())
	return r, nil
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, limiter middleware.Limiter, limits RateLimits) {
	r.GET("/", h.Root)

	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	requireUser := middleware.Auth(h.Auth)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, "api", limits.API, limits.APIWindow, middleware.KeyByIP))

	authLimit := middleware.RateLimit(limiter, "auth", limits.Auth, limits.AuthWindow, middleware.KeyByIP)
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authLimit, h.Signup)
		auth.POST("/login", authLimit, h.Login)
		auth.POST("/test-token", requireUser, h.TestToken)
		auth.GET("/activity", requireUser, h.Activity)
	}

	tasks := v1.Group("/tasks")
	tasks.Use(requireUser, middleware.RateLimit(limiter, "user", limits.API, limits.APIWindow, middleware.KeyByUser))
	{
		tasks.GET("", h.ListTasks)
		tasks.GET("/", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.POST("/", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}
}
