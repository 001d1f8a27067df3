package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc probes one backend dependency.
type CheckFunc func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	database  CheckFunc
	optional  map[string]CheckFunc
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler. database is required;
// optional checks (e.g. redis) only affect readiness.
func NewHealthHandler(database CheckFunc, version string, optional map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{
		database:  database,
		optional:  optional,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health always answers 200 and reports database connectivity in the body,
// so a degraded backend is visible without the probe itself failing.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.database(ctx); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"version":  h.version,
	})
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness returns detailed health status (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if err := h.database(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else {
		checks["database"] = "healthy"
	}

	names := make([]string, 0, len(h.optional))
	for name := range h.optional {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.optional[name](ctx); err != nil {
			checks[name] = "degraded: " + err.Error()
		} else {
			checks[name] = "healthy"
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
