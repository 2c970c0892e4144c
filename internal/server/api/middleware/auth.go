// Package middleware provides HTTP middleware implementations
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ghosthack3r/wintune/internal/shared/types"
)

// BearerAuth creates a Bearer token authentication middleware
func BearerAuth(expectedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expectedKey)) != 1 {
			unauthorized(c, "invalid api key")
			return
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(401, gin.H{
		"success": false,
		"error": gin.H{
			"code":    types.ErrCodeUnauthorized,
			"message": message,
		},
	})
	c.Abort()
}
