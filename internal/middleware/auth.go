package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/pkg/auth"
)

// Auth gates every protected route behind a bearer service token. The token's
// signature is checked against the server secret and its "key" claim against
// the shared service key. Nothing is attached to the request on success;
// authentication is stateless and leaves handler inputs untouched.
func Auth(manager *auth.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			log.Warn("unauthorized access attempt",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authorization header missing or invalid",
				"code":    "UNAUTHORIZED",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		if err := manager.Verify(token); err != nil {
			if errors.Is(err, auth.ErrKeyMismatch) {
				log.Warn("invalid service key",
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"status":  "error",
					"message": "Invalid service key",
					"code":    "FORBIDDEN",
				})
				return
			}

			log.Warn("token verification failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid or expired token",
				"code":    "UNAUTHORIZED",
			})
			return
		}

		c.Next()
	}
}
