package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"bachat_backend/internal/middleware"
	"bachat_backend/internal/model"
	"bachat_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler handles admin push broadcasts
type NotificationHandler struct {
	service service.NotificationService
	log     *slog.Logger
}

func NewNotificationHandler(s service.NotificationService, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: s, log: log}
}

// publicBaseURL is the scheme and host the client used to reach us
func publicBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var req model.SendNotificationRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Notification body is required")
		return
	}

	var image *multipart.FileHeader
	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil:
		image = fileHeader
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		badRequest(c, "Invalid image upload")
		return
	}

	result, err := h.service.Send(c.Request.Context(), req, image, publicBaseURL(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Notification sent successfully",
		"successCount": result.SuccessCount,
		"failureCount": result.FailureCount,
	})
}

func (h *NotificationHandler) RegisterNotificationRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	notifications := rg.Group("/notifications", authMW, middleware.AdminMiddleware())
	{
		notifications.POST("/send", h.SendNotification)
	}
}
