package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	AppVersion  string
	DatabaseURL string

	// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is honoured.
	// Empty means the client address is always the socket peer.
	TrustedProxies []string

	JWTSecret      string
	AccessTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// InMemory reports whether DATABASE_URL asks for the dev-mode stores.
func (c *Config) InMemory() bool {
	return strings.EqualFold(c.DatabaseURL, MemoryDatabaseURL)
}

// MemoryDatabaseURL selects the process-local stores instead of Postgres.
// Data does not survive a restart.
const MemoryDatabaseURL = "memory"

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is not set")
)

// Load reads the .env file (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, ErrMissingJWTSecret
	}

	return &Config{
		AppPort:        envString("APP_PORT", "8080"),
		AppVersion:     envString("APP_VERSION", "dev"),
		DatabaseURL:    dbURL,
		TrustedProxies: envList("TRUSTED_PROXIES"),
		JWTSecret:      jwtSecret,
		AccessTokenTTL: time.Duration(envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RedisAddr:      envString("REDIS_ADDR", ""),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envIntAllowZero("REDIS_DB", 0),
		APIRateLimit:   envInt("API_RATE_LIMIT", 120),
		APIRateWindow:  time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogJSON:        strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
	}, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns def unless the variable holds a positive integer.
func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// envList splits a comma-separated variable, dropping blanks. Unset yields nil.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envIntAllowZero(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
