package handlers

import (
	"net/http"

	"task_manager/internal/domain"
	"task_manager/internal/http/middleware"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Auth  *service.AuthService
	Tasks *service.TaskService
	Audit *service.AuditService
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, audit *service.AuditService) *Handler {
	return &Handler{
		Auth:  auth,
		Tasks: tasks,
		Audit: audit,
	}
}

// Root is the unauthenticated landing endpoint.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Task Management API"})
}

// currentUser reads the user attached by middleware.Auth. Routes that call it
// are always mounted behind that middleware.
func currentUser(c *gin.Context) (*domain.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "not authenticated")
	}
	return u, ok
}

func requestInfo(c *gin.Context) service.RequestInfo {
	return service.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
