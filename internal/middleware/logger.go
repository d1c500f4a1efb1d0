package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/careconnect-api/internal/handler"
)

// Logger returns a middleware that logs HTTP requests. Bodies are never
// logged since they carry passwords and tokens.
func Logger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		if _, ok := skip[path]; ok {
			return
		}

		if raw != "" {
			path = path + "?" + raw
		}
		statusCode := c.Writer.Status()

		var event *zerolog.Event
		switch {
		case statusCode >= 500:
			event = log.Error()
		case statusCode >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())

		if p := handler.Principal(c); p.UserID != 0 {
			event = event.Int64("user_id", p.UserID).Str("role", p.Role.String())
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		switch {
		case statusCode >= 500:
			event.Msg("Server error")
		case statusCode >= 400:
			event.Msg("Client error")
		default:
			event.Msg("Request processed")
		}
	}
}
