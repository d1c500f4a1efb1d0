package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/careconnect-api/internal/handler/health"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
	"github.com/jwalitptl/careconnect-api/pkg/validator"
)

// Handler mounts routes that all require authentication.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler mounts some routes without authentication, such as
// registration and login, next to protected ones.
type PublicHandler interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}

type Handlers struct {
	Auth           PublicHandler
	Patient        PublicHandler
	Doctor         PublicHandler
	Specialization Handler
	TimeSlot       Handler
	Appointment    Handler
	Health         *health.Handler
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	MaxInFlight    int64
	Metrics        *metrics.Metrics
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	validator.Register()
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger("/api/v1/health/live", "/api/v1/health/ready", "/api/v1/metrics"),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	engine.Use(
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
	)

	return r
}

func (r *Router) Setup() *Router {
	api := r.engine.Group("/api/v1")

	// Health and metrics are exempt from limits
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	api.Use(
		middleware.ConcurrencyLimit(r.config.MaxInFlight),
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: r.config.MaxBodyBytes}),
		middleware.Cache(middleware.DefaultCacheConfig()),
		middleware.AuditContext(),
	)
	if r.config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		api.Use(rateLimiter.RateLimit())
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	for _, h := range []PublicHandler{r.handlers.Auth, r.handlers.Patient, r.handlers.Doctor} {
		if h != nil {
			h.RegisterRoutes(api, protected)
		}
	}
	for _, h := range []Handler{r.handlers.Specialization, r.handlers.TimeSlot, r.handlers.Appointment} {
		if h != nil {
			h.RegisterRoutes(protected)
		}
	}
	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
