package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/service/audit"
)

// AuditContext makes the client address and user agent available to the
// audit service for entries written while serving the request.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithRequestMeta(c.Request.Context(), model.RequestMeta{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
