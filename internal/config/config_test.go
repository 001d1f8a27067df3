package config

import (
	"errors"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tasks")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"APP_PORT", "ACCESS_TOKEN_EXPIRE_MINUTES", "REDIS_ADDR", "API_RATE_LIMIT", "LOG_FORMAT", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %q; want 8080", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("AccessTokenTTL = %v; want 30m", cfg.AccessTokenTTL)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("RedisAddr = %q; want empty", cfg.RedisAddr)
	}
	if cfg.APIRateLimit != 120 || cfg.APIRateWindow != time.Minute {
		t.Fatalf("api rate = %d/%v", cfg.APIRateLimit, cfg.APIRateWindow)
	}
	if cfg.LogJSON {
		t.Fatalf("expected text logs by default")
	}
	if cfg.TrustedProxies != nil {
		t.Fatalf("TrustedProxies = %v; want nil", cfg.TrustedProxies)
	}
}

func TestLoadTrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, ,192.168.0.0/16 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.1" || cfg.TrustedProxies[1] != "192.168.0.0/16" {
		t.Fatalf("TrustedProxies = %q", cfg.TrustedProxies)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppPort != "9090" {
		t.Fatalf("AppPort = %q", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if cfg.AuthRateLimit != 10 {
		t.Fatalf("AuthRateLimit = %d; want default 10", cfg.AuthRateLimit)
	}
	if !cfg.LogJSON {
		t.Fatalf("expected json logs")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("err = %v; want ErrMissingDatabaseURL", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("JWT_SECRET", " ")
	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("err = %v; want ErrMissingJWTSecret", err)
	}
}

func TestInMemory(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InMemory() {
		t.Fatalf("postgres url reported as in-memory")
	}

	t.Setenv("DATABASE_URL", "Memory")
	if cfg, _ = Load(); !cfg.InMemory() {
		t.Fatalf("expected in-memory mode")
	}
}
