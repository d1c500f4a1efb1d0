package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge         int
	Private        bool
	NoStore        bool
	MustRevalidate bool
	Vary           []string
}

// DefaultCacheConfig keeps patient data out of shared caches.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Private: true,
		NoStore: true,
		Vary:    []string{"Authorization"},
	}
}

// Cache adds cache control headers to responses
func Cache(config CacheConfig) gin.HandlerFunc {
	directives := make([]string, 0, 4)
	if config.Private {
		directives = append(directives, "private")
	}
	if config.NoStore {
		directives = append(directives, "no-store")
	} else if config.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	cacheControl := strings.Join(directives, ", ")
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		// writes are never cacheable
		if c.Request.Method != "GET" {
			c.Header("Cache-Control", "no-store")
		} else if cacheControl != "" {
			c.Header("Cache-Control", cacheControl)
		}
		if vary != "" {
			c.Header("Vary", vary)
		}
		c.Next()
	}
}
