package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
)

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// KeyFunc derives the rate-limit identity of a request; "" skips limiting.
type KeyFunc func(c *gin.Context) string

// KeyByIP limits per client address.
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// KeyByUser limits per authenticated user and must run after Auth.
func KeyByUser(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return "user:" + strconv.FormatInt(u.ID, 10)
	}
	return ""
}

// RateLimit rejects requests beyond max per window with 429. Limiter errors
// fail open so a flaky backend never takes the API down.
func RateLimit(l Limiter, scope string, max int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || max <= 0 {
			c.Next()
			return
		}
		ident := key(c)
		if ident == "" {
			c.Next()
			return
		}

		k := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
		val, err := l.Hit(c.Request.Context(), k, window)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err, "scope", scope)
			c.Header("X-RateLimit-Error", "limiter-error")
			c.Next()
			return
		}

		remaining := int64(max) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(max) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}

type window struct {
	start time.Time
	size  time.Duration
	count int64
}

// MemoryLimiter is the single-process fallback used when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window), now: time.Now}
}

func (m *MemoryLimiter) Hit(_ context.Context, key string, d time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= w.size {
		m.sweep(now)
		m.windows[key] = &window{start: now, size: d, count: 1}
		return 1, nil
	}
	w.count++
	return w.count, nil
}

// sweep drops windows that expired so idle clients do not pile up.
func (m *MemoryLimiter) sweep(now time.Time) {
	for k, w := range m.windows {
		if now.Sub(w.start) >= w.size {
			delete(m.windows, k)
		}
	}
}
