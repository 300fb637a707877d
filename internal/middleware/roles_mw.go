package middleware

import (
	"net/http"

	"bachat_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}

		if !hasRole(user.Role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Not authorized as an admin"})
			return
		}

		c.Next()
	}
}

func hasRole(role model.Role, allowed []model.Role) bool {
	switch role {
	case model.RoleUser, model.RoleAdmin:
		for _, r := range allowed {
			if role == r {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}
