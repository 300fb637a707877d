package handler

import (
	"context"
	"net/http"
	"time"

	"bachat_backend/internal/health"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and component status
type HealthHandler struct {
	checker *health.Checker
	timeout time.Duration
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker, timeout: 2 * time.Second}
}

// Health always answers 200 while the process is serving; degraded components are listed
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	c.JSON(http.StatusOK, h.checker.Check(ctx))
}
