package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"bachat_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable translates service sentinels into client facing responses
var errorTable = []errorMapping{
	{service.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP"},
	{service.ErrOTPExpired, http.StatusBadRequest, "OTP expired"},
	{service.ErrInvalidIDToken, http.StatusBadRequest, "Google Auth Failed"},
	{service.ErrEmailInUse, http.StatusBadRequest, "Email is already linked to another account"},
	{service.ErrInvalidFileFormat, http.StatusBadRequest, "Invalid file format. Only .jpg, .jpeg, .png, .gif, .webp are allowed"},
	{service.ErrFileSizeExceeded, http.StatusBadRequest, "File size exceeds the 5MB limit"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrExpenseNotFound, http.StatusNotFound, "Expense not found"},
	{service.ErrUdhaarNotFound, http.StatusNotFound, "Udhaar not found"},
	{service.ErrNoDevices, http.StatusNotFound, "No devices found to send notification"},
	{service.ErrTooManyRequests, http.StatusTooManyRequests, "Too many OTP attempts, please try again later"},
	{service.ErrMailerNotConfigured, http.StatusServiceUnavailable, "Email service not configured on server"},
	{service.ErrPushNotConfigured, http.StatusServiceUnavailable, "Firebase not configured on server"},
	{service.ErrGoogleNotConfigured, http.StatusServiceUnavailable, "Google sign-in not configured on server"},
	{service.ErrDispatchFailed, http.StatusInternalServerError, "Failed to deliver message"},
}

// writeError maps err onto the response; unknown errors are logged and hidden
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error()})
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error(m.message, slog.String("route", c.FullPath()), slog.Any("error", err))
			}
			c.JSON(m.status, gin.H{"message": m.message})
			return
		}
	}
	log.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("route", c.FullPath()),
		slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
