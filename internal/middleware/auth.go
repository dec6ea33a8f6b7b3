package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/refsync/internal/models"
)

// AdminKeyHeader carries the shared admin secret
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey rejects requests whose X-Admin-Key header does not match key.
// An empty key disables the check, for local development.
func RequireAdminKey(key string) gin.HandlerFunc {
	if key == "" {
		log.Warn("ADMIN_KEY is not set; admin routes are unauthenticated")
	}
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "missing or invalid " + AdminKeyHeader,
			})
			return
		}
		c.Next()
	}
}
