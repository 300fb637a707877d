package handler

import (
	"log/slog"
	"net/http"

	"bachat_backend/internal/middleware"
	"bachat_backend/internal/model"
	"bachat_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	log     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

func signInMeta(c *gin.Context, device *model.DeviceInfo) model.SignInMeta {
	return model.SignInMeta{IP: c.ClientIP(), Device: device}
}

func sessionResponse(res *model.AuthResult) gin.H {
	return gin.H{
		"_id":            res.User.ID,
		"fullName":       res.User.FullName,
		"email":          res.User.Email,
		"mobileNumber":   res.User.MobileNumber,
		"profilePicture": res.User.ProfilePicture,
		"role":           res.User.Role,
		"isNewUser":      res.IsNewUser,
		"token":          res.Token,
	}
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req model.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Google ID token is required")
		return
	}

	res, err := h.service.GoogleLogin(c.Request.Context(), req.Token, signInMeta(c, req.DeviceInfo))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(res))
}

func (h *AuthHandler) GoogleWebLogin(c *gin.Context) {
	var req model.GoogleWebLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and ID are required")
		return
	}

	res, err := h.service.GoogleWebLogin(c.Request.Context(), req, signInMeta(c, req.DeviceInfo))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(res))
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req model.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "A valid email is required")
		return
	}

	if err := h.service.RequestOTP(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and a 6 digit OTP are required")
		return
	}

	res, err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"_id":      res.User.ID,
		"fullName": res.User.FullName,
		"email":    res.User.Email,
		"role":     res.User.Role,
		"token":    res.Token,
	})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context, user *model.User) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	res, err := h.service.UpdateProfile(c.Request.Context(), user.ID, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"_id":            res.User.ID,
		"fullName":       res.User.FullName,
		"email":          res.User.Email,
		"mobileNumber":   res.User.MobileNumber,
		"profilePicture": res.User.ProfilePicture,
		"token":          res.Token,
	})
}

func (h *AuthHandler) UpdateFCMToken(c *gin.Context, user *model.User) {
	var req model.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "fcmToken is required")
		return
	}

	if err := h.service.UpdateFCMToken(c.Request.Context(), user.ID, req.FCMToken); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}

// RegisterAuthRoutes registers auth routes; protected routes go through authMW
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/google", h.GoogleLogin)
		authGroup.POST("/google-web", h.GoogleWebLogin)
		authGroup.POST("/otp/request", h.RequestOTP)
		authGroup.POST("/otp/verify", h.VerifyOTP)
		authGroup.PUT("/profile", authMW, middleware.WithUser(h.UpdateProfile))
		authGroup.PUT("/fcm-token", authMW, middleware.WithUser(h.UpdateFCMToken))
	}
}
