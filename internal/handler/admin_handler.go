package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"bachat_backend/internal/middleware"
	"bachat_backend/internal/model"
	"bachat_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboard and analytics endpoints
type AdminHandler struct {
	admin     service.AdminService
	analytics service.AnalyticsService
	log       *slog.Logger
}

func NewAdminHandler(admin service.AdminService, analytics service.AnalyticsService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, analytics: analytics, log: log}
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) RecordActivity(c *gin.Context, user *model.User) {
	var req model.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "type must be app_open or session")
		return
	}

	if _, err := h.analytics.RecordActivity(c.Request.Context(), user.ID, req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Activity recorded"})
}

func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	days := service.DefaultReportDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	report, err := h.analytics.Report(c.Request.Context(), days)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RegisterAdminRoutes registers /admin and /analytics routes
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := rg.Group("/admin", authMW, middleware.AdminMiddleware())
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/users", h.GetUsers)
	}

	analytics := rg.Group("/analytics", authMW)
	{
		analytics.POST("/activity", middleware.WithUser(h.RecordActivity))
		analytics.GET("/admin", middleware.AdminMiddleware(), h.GetAnalytics)
	}
}
