package handler

import (
	"log/slog"
	"net/http"

	"bachat_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router bundles everything the HTTP surface is built from
type Router struct {
	Auth          *AuthHandler
	Expenses      *ExpenseHandler
	Udhaar        *UdhaarHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
	Health        *HealthHandler

	AuthMiddleware gin.HandlerFunc
	UploadsDir     string
	Logger         *slog.Logger
}

// Engine wires middleware and mounts every route under /api
func (r Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestLogger(r.Logger),
		middleware.Recovery(r.Logger),
		middleware.Metrics(),
		middleware.CORS(),
	)

	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "API is running...") })
	engine.GET("/health", r.Health.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if r.UploadsDir != "" {
		engine.Static("/uploads", r.UploadsDir)
	}

	api := engine.Group("/api")
	api.GET("/health", r.Health.Health)
	r.Auth.RegisterAuthRoutes(api, r.AuthMiddleware)
	r.Expenses.RegisterExpenseRoutes(api, r.AuthMiddleware)
	r.Udhaar.RegisterUdhaarRoutes(api, r.AuthMiddleware)
	r.Admin.RegisterAdminRoutes(api, r.AuthMiddleware)
	r.Notifications.RegisterNotificationRoutes(api, r.AuthMiddleware)

	return engine
}
