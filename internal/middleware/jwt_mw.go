package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bachat_backend/internal/model"
	"bachat_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthUserKey holds the resolved *model.User on the gin context
const AuthUserKey = "authUser"

// UserLookup loads the user a session token was issued to
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// JWTAuthMiddleware creates a middleware for JWT authentication. Token failures
// abort before the user store is consulted.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, users UserLookup, log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, invalid authorization header"})
			return
		}

		claims, err := jwtUtil.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Error("failed to load authenticated user", slog.String("user_id", claims.UserID), slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, user not found"})
			return
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

// WithUser adapts a handler that takes the authenticated user as an argument
func WithUser(fn func(c *gin.Context, user *model.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		fn(c, user)
	}
}
