package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/careconnect-api/internal/config"
	"github.com/jwalitptl/careconnect-api/internal/email"
	"github.com/jwalitptl/careconnect-api/internal/handler/health"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/repository/postgres"
	"github.com/jwalitptl/careconnect-api/internal/service/notification"
	auditWorker "github.com/jwalitptl/careconnect-api/internal/worker"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
	"github.com/jwalitptl/careconnect-api/pkg/messaging/redis"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
	"github.com/jwalitptl/careconnect-api/pkg/worker"
)

const healthAddr = ":8081"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	appLogger := logger.Setup(cfg.Log.ToLoggerConfig()).WithFields(map[string]interface{}{
		"component": "worker",
	})
	gin.SetMode(gin.ReleaseMode)

	if cfg.Redis.URL == "" {
		log.Fatal().Msg("redis.url is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database.ToPostgresConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to message broker")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	m := metrics.New(prometheus.DefaultRegisterer, "careconnect")

	processor, err := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLogger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid outbox configuration")
	}

	notifier := notification.NewService(
		postgres.NewPatientRepository(base),
		postgres.NewDoctorRepository(base),
		email.NewService(cfg.SMTP),
		m,
	)
	if err := notifier.Subscribe(ctx, broker); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe notifications")
	}

	cleanup := auditWorker.NewAuditCleanupWorker(auditRepo, outboxRepo,
		cfg.Audit.RetentionDays, cfg.Outbox.Retention, cfg.Audit.CleanupInterval)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(prometheus.DefaultGatherer, map[string]health.Check{
		"database": db.PingContext,
	}).RegisterRoutes(engine)
	srv := &http.Server{Addr: healthAddr, Handler: engine, ReadTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Start(gctx)
		return nil
	})
	g.Go(func() error {
		cleanup.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	log.Info().Str("health_addr", healthAddr).Msg("worker started")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("worker stopped with error")
		return
	}
	log.Info().Msg("worker stopped")
}
