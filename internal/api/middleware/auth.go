package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/auth"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyIsAdmin holds the key for admin status in Gin context.
	ContextKeyIsAdmin = "isAdmin"
)

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("Authorization header required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("Authorization header format must be Bearer {token}")
	}
	return parts[1], nil
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			errMsg := fmt.Sprintf("Invalid or expired token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid bearer token is
// present and lets anonymous requests through untouched.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := bearerToken(c); err == nil {
			if claims, err := auth.ValidateJWT(tokenString, jwtSecret); err == nil {
				c.Set(ContextKeyUserID, claims.UserID)
				c.Set(ContextKeyIsAdmin, claims.IsAdmin)
			}
		}
		c.Next()
	}
}

// AdminMiddleware creates a Gin middleware to check for admin privileges.
// Assumes AuthMiddleware runs first.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextKeyIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator privileges required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
