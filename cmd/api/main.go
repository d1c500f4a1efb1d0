package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/careconnect-api/internal/config"
	appointmentHandler "github.com/jwalitptl/careconnect-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/careconnect-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/careconnect-api/internal/handler/doctor"
	"github.com/jwalitptl/careconnect-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/careconnect-api/internal/handler/patient"
	specializationHandler "github.com/jwalitptl/careconnect-api/internal/handler/specialization"
	timeslotHandler "github.com/jwalitptl/careconnect-api/internal/handler/timeslot"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/repository/postgres"
	redisRepo "github.com/jwalitptl/careconnect-api/internal/repository/redis"
	"github.com/jwalitptl/careconnect-api/internal/router"
	appointmentService "github.com/jwalitptl/careconnect-api/internal/service/appointment"
	auditService "github.com/jwalitptl/careconnect-api/internal/service/audit"
	authService "github.com/jwalitptl/careconnect-api/internal/service/auth"
	doctorService "github.com/jwalitptl/careconnect-api/internal/service/doctor"
	eventService "github.com/jwalitptl/careconnect-api/internal/service/event"
	patientService "github.com/jwalitptl/careconnect-api/internal/service/patient"
	specializationService "github.com/jwalitptl/careconnect-api/internal/service/specialization"
	timeslotService "github.com/jwalitptl/careconnect-api/internal/service/timeslot"
	"github.com/jwalitptl/careconnect-api/pkg/auth"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
	"github.com/jwalitptl/careconnect-api/pkg/security"
	"github.com/jwalitptl/careconnect-api/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(cfg.Log.ToLoggerConfig())
	validator.SetLocation(cfg.Location())
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database.ToPostgresConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	specRepo := postgres.NewSpecializationRepository(base)
	slotRepo := postgres.NewTimeSlotRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)
	auditRepo := postgres.NewAuditRepository(base)

	checks := map[string]health.Check{
		"database": db.PingContext,
	}

	// Revoked tokens live in Redis when it is configured, otherwise in Postgres
	var blacklist repository.TokenBlacklist
	if cfg.Redis.URL != "" {
		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer client.Close()
		blacklist = redisRepo.NewBlacklist(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("redis.url not set, using the database token blacklist")
		blacklist = postgres.NewTokenBlacklist(base)
	}

	m := metrics.New(prometheus.DefaultRegisterer, "careconnect")
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewManager(cfg.JWT.ToAuthConfig())

	// Initialize services
	auditSvc := auditService.NewService(auditRepo)
	eventSvc := eventService.NewEventService(outboxRepo)
	authSvc := authService.NewService(userRepo, tokens, blacklist, hasher, auditSvc)
	specSvc := specializationService.NewService(specRepo, cfg.Cache.SpecializationTTL)
	patientSvc := patientService.NewService(patientRepo, userRepo, hasher, eventSvc, auditSvc)
	doctorSvc := doctorService.NewService(doctorRepo, userRepo, specRepo, hasher, eventSvc, auditSvc, specSvc)
	slotSvc := timeslotService.NewService(slotRepo, doctorRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, doctorRepo, eventSvc, auditSvc,
		appointmentService.WithLocation(cfg.Location()))

	// Initialize handlers
	handlers := router.Handlers{
		Auth: authHandler.NewHandler(authSvc, authHandler.CookieConfig{
			MaxAge: cfg.JWT.RefreshTTL,
			Secure: cfg.Server.SecureCookies,
		}),
		Patient:        patientHandler.NewHandler(patientSvc, appointmentSvc),
		Doctor:         doctorHandler.NewHandler(doctorSvc, appointmentSvc),
		Specialization: specializationHandler.NewHandler(specSvc),
		TimeSlot:       timeslotHandler.NewHandler(slotSvc),
		Appointment:    appointmentHandler.NewHandler(appointmentSvc),
		Health:         health.NewHandler(prometheus.DefaultGatherer, checks),
	}

	routerConfig := router.RouterConfig{
		CORSConfig: middleware.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxInFlight:    cfg.Server.MaxInFlight,
		Metrics:        m,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), handlers, routerConfig).Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", cfg.App.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server exited properly")
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
