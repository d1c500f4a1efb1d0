package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/jwalitptl/careconnect-api/internal/handler"
)

// ConcurrencyLimit caps the number of requests handled at once. Requests over
// the cap are answered 503 immediately instead of queueing.
func ConcurrencyLimit(maxInFlight int64) gin.HandlerFunc {
	if maxInFlight <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(maxInFlight)

	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, handler.NewErrorResponse("server is busy, try again later"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
