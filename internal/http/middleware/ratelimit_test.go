package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

func newLimitedRouter(l Limiter, max int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", RateLimit(l, "test", max, window, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doGet(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.0.2.10:1234"
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newLimitedRouter(NewRedisLimiter(client), 2, time.Minute)

	for i := 0; i < 2; i++ {
		if resp := doGet(r, "/test"); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, resp.Code)
		}
	}
	resp := doGet(r, "/test")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", resp.Header().Get("Retry-After"))
	}

	// window expiry resets the counter
	mr.FastForward(time.Minute)
	if resp := doGet(r, "/test"); resp.Code != http.StatusOK {
		t.Fatalf("after window: expected 200 got %d", resp.Code)
	}
}

func TestRedisLimiterSetsTTLWithFirstHit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewRedisLimiter(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := l.Hit(ctx, "rl:test:k", time.Minute)
		if err != nil || got != want {
			t.Fatalf("hit = %d, %v; want %d", got, err, want)
		}
		if ttl := mr.TTL("rl:test:k"); ttl <= 0 || ttl > time.Minute {
			t.Fatalf("hit %d: ttl = %v; want within the window", want, ttl)
		}
	}

	mr.FastForward(time.Minute)
	if mr.Exists("rl:test:k") {
		t.Fatalf("counter outlived its window")
	}
	if got, _ := l.Hit(ctx, "rl:test:k", time.Minute); got != 1 {
		t.Fatalf("hit in new window = %d; want 1", got)
	}
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := newLimitedRouter(NewRedisLimiter(client), 1, time.Minute)
	for i := 0; i < 3; i++ {
		resp := doGet(r, "/test")
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected fail-open 200 got %d", i, resp.Code)
		}
		if resp.Header().Get("X-RateLimit-Error") == "" {
			t.Fatalf("expected limiter error header")
		}
	}
}

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, _ := l.Hit(ctx, "k", time.Minute)
		if got != want {
			t.Fatalf("hit = %d; want %d", got, want)
		}
	}

	// a shorter window on another key must not reset this one
	_, _ = l.Hit(ctx, "short", time.Second)
	now = now.Add(2 * time.Second)
	_, _ = l.Hit(ctx, "short", time.Second)
	if got, _ := l.Hit(ctx, "k", time.Minute); got != 4 {
		t.Fatalf("hit after sweep = %d; want 4", got)
	}

	now = now.Add(time.Minute)
	if got, _ := l.Hit(ctx, "k", time.Minute); got != 1 {
		t.Fatalf("hit in new window = %d; want 1", got)
	}
}

func TestMemoryRateLimitMiddleware(t *testing.T) {
	r := newLimitedRouter(NewMemoryLimiter(), 1, time.Minute)

	if resp := doGet(r, "/test"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	resp := doGet(r, "/test")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("remaining = %q", resp.Header().Get("X-RateLimit-Remaining"))
	}
}

type failingLimiter struct{}

func (failingLimiter) Hit(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("unavailable")
}

func TestRateLimitSkipsWithoutKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", RateLimit(failingLimiter{}, "user", 1, time.Minute, KeyByUser), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	resp := doGet(r, "/test")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if resp.Header().Get("X-RateLimit-Error") != "" {
		t.Fatalf("limiter should not be consulted without a user")
	}
}
