package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"task_manager/internal/domain"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var in domain.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task payload"})
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task payload"})
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), user.ID, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Delete(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Audit.LogTaskDelete(c.Request.Context(), user.ID, task, requestInfo(c))
	c.JSON(http.StatusOK, task)
}

// taskID parses the :id path segment. Ids that cannot exist are reported as
// not found rather than as malformed input.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return 0, false
	}
	return id, true
}

func parseTaskFilter(c *gin.Context) (domain.TaskFilter, error) {
	var f domain.TaskFilter

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.TaskStatus(raw)
		f.Status = &status
	}

	var err error
	if f.Skip, err = queryInt(c, "skip", 0); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit", service.DefaultTaskLimit); err != nil {
		return f, err
	}
	return f, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, key)
	}
	return n, nil
}
