package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	requestIDContextKey = "request_id"
	requestIDHeaderName = "X-Request-ID"
)

// RequestIDFromContext returns a request ID or an empty string when unavailable.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// RequestID tags each request with an id (echoing a sane inbound one), puts a
// request-scoped logger into the request context and writes one access-log line.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		requestID := normalizeRequestID(c.GetHeader(requestIDHeaderName))
		if requestID == "" {
			requestID = generateRequestID()
		}

		c.Set(requestIDContextKey, requestID)
		c.Writer.Header().Set(requestIDHeaderName, requestID)

		reqLog := logger.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))

		c.Next()

		reqLog.Info("request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(startedAt).Microseconds())/1000.0,
			"client_ip", c.ClientIP(),
		)
	}
}

func normalizeRequestID(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return ""
	}
	if len(candidate) > 128 {
		candidate = candidate[:128]
	}
	return candidate
}

func generateRequestID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b[:])
}
