package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Internal guards the scheduled-trigger endpoints. The scheduler supplies a
// static key in X-API-Key.
func Internal(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.Request.Header.Get("X-API-Key")
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(apiKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
