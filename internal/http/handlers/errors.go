package handlers

import (
	"errors"
	"net/http"

	"task_manager/internal/logger"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged with the request id and reported as 500 without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInactiveUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": "inactive user"})
	case errors.Is(err, service.ErrInvalidCredentials):
		abortUnauthorized(c, err.Error())
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrExpiredToken):
		abortUnauthorized(c, "could not validate credentials")
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", "error", err, "route", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
