package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/port"
	"github.com/top-magar/indigo-sub018/internal/infra/config"
	"github.com/top-magar/indigo-sub018/internal/infra/database"
	kafkainfra "github.com/top-magar/indigo-sub018/internal/infra/kafka"
	"github.com/top-magar/indigo-sub018/internal/infra/logger"
	redisinfra "github.com/top-magar/indigo-sub018/internal/infra/redis"
	"github.com/top-magar/indigo-sub018/internal/infra/telemetry"
	memoryrepo "github.com/top-magar/indigo-sub018/internal/repository/memory"
	postgresrepo "github.com/top-magar/indigo-sub018/internal/repository/postgres"
	redisrepo "github.com/top-magar/indigo-sub018/internal/repository/redis"
	"github.com/top-magar/indigo-sub018/internal/transport/http/handlers"
	"github.com/top-magar/indigo-sub018/internal/transport/http/middleware"
	"github.com/top-magar/indigo-sub018/internal/transport/http/routes"
	"github.com/top-magar/indigo-sub018/internal/usecase"
)

// Application owns the process lifecycle: wiring, serving, graceful shutdown.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

// New wires the application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	// The admission counter store: Redis when configured so limits hold
	// across replicas, otherwise the in-process store.
	var counterStore port.CounterStore
	var redisClient *redisinfra.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		counterStore = redisrepo.NewCounterStore(redisClient.Client(), redisrepo.CounterConfig{
			KeyPrefix: cfg.Redis.RateLimitPrefix,
		})
	} else {
		log.Info("redis disabled, using in-process admission counters")
		counterStore = memoryrepo.NewCounterStore()
	}

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	tenantRepo := postgresrepo.NewTenantRepository(pool)
	productRepo := postgresrepo.NewProductRepository()
	executor := postgresrepo.NewTenantTxExecutor(pool, log).
		WithAcquireTimeout(cfg.Postgres.AcquireTimeout)

	limiter := usecase.NewRateLimiter(counterStore, cfg.RateLimit.ScopeConfigs(), log)
	tenantService := usecase.NewTenantService(tenantRepo, eventPublisher, cfg.Platform.RootDomain, log)

	admissionMetrics := telemetry.NewAdmissionMetrics(nil)
	admission := middleware.NewAdmission(limiter, admissionMetrics, log)
	verifier := middleware.NewSessionVerifier(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	healthOptions := []handlers.HealthOption{
		handlers.WithReadinessCheck("database", pool.Ping),
	}
	if redisClient != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", redisClient.HealthCheck))
	}

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Admission: admission,
		Verifier:  verifier,
		Metrics:   httpMetrics,
		Handlers: routes.HandlerSet{
			Health:     handlers.NewHealthHandler(healthOptions...),
			Auth:       handlers.NewAuthHandler(verifier),
			Tenants:    handlers.NewTenantHandler(tenantService),
			Storefront: handlers.NewStorefrontHandler(tenantService),
			Dashboard:  handlers.NewDashboardHandler(executor, productRepo),
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracer:   tracer,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", zap.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka shutdown failed", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis shutdown failed", zap.Error(err))
		}
	}
	if err := a.tracer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown failed", zap.Error(err))
	}
	a.pool.Close()

	return nil
}
