package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prperemyshlev/autoimport/internal/config"
	"github.com/prperemyshlev/autoimport/migrations"
	"github.com/prperemyshlev/autoimport/pkg/database"
	"github.com/prperemyshlev/autoimport/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "autoimport"

type Infrastructure interface {
	Postgres() *database.Postgres
	// Redis may be unreachable; callers degrade instead of failing
	Redis() *database.Redis
	// RabbitMQ is nil when no broker is configured
	RabbitMQ() *database.RabbitMQ
	Logger() *zap.Logger
	Metrics() *observability.Metrics
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	rabbitmq       *database.RabbitMQ
	logger         *zap.Logger
	metrics        *observability.Metrics
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(migrations.FS); err != nil {
			_ = i.postgres.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, cache and rate limiting degraded", zap.Error(err))
	}
	i.redis = redis

	if cfg.AMQP.URL != "" {
		mq, err := database.NewRabbitMQ(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			_ = i.postgres.Close()
			_ = i.redis.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		i.rabbitmq = mq
	} else {
		logger.Info("AMQP_URL not set, order events disabled")
	}

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		i.closeConnections()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	metrics, err := observability.NewMetrics(meterProvider)
	if err != nil {
		i.closeConnections()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	i.metrics = metrics

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) RabbitMQ() *database.RabbitMQ {
	return i.rabbitmq
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) Metrics() *observability.Metrics {
	return i.metrics
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) closeConnections() {
	_ = i.postgres.Close()
	_ = i.redis.Close()
	_ = i.rabbitmq.Close()
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.rabbitmq.Close() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	err := errors.Join(<-errs, <-errs, <-errs, <-errs)

	// stdout/stderr sync fails on some platforms; not worth reporting
	_ = i.logger.Sync()

	return err
}
