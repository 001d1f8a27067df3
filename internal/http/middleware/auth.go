package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// UserResolver is implemented by service.AuthService.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires a valid bearer token for an active user and stores the
// user in the gin context for CurrentUser.
func Auth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			AuthFailures.WithLabelValues("missing").Inc()
			abortUnauthorized(c, "not authenticated")
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrExpiredToken):
			AuthFailures.WithLabelValues("expired").Inc()
			abortUnauthorized(c, "token expired")
			return
		case errors.Is(err, service.ErrInvalidToken):
			AuthFailures.WithLabelValues("invalid").Inc()
			abortUnauthorized(c, "could not validate credentials")
			return
		case errors.Is(err, service.ErrUserNotFound):
			AuthFailures.WithLabelValues("unknown_user").Inc()
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		case errors.Is(err, service.ErrInactiveUser):
			AuthFailures.WithLabelValues("inactive").Inc()
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "inactive user"})
			return
		default:
			logger.FromContext(c.Request.Context()).Error("resolve user failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
