package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/nilecommerce/admin-service/internal/consumers/orderevents"
	"github.com/nilecommerce/admin-service/internal/dashboard"
	"github.com/nilecommerce/admin-service/internal/merchants"
	"github.com/nilecommerce/admin-service/pkg/config"
	"github.com/nilecommerce/admin-service/pkg/db"
	"github.com/nilecommerce/admin-service/pkg/logger"
	"github.com/nilecommerce/admin-service/pkg/metrics"
	"github.com/nilecommerce/admin-service/pkg/migrate"
	"github.com/nilecommerce/admin-service/pkg/rabbitmq"
	"github.com/nilecommerce/admin-service/pkg/upstream"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "order-events-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "order-events-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	merchantClient, err := upstream.NewClient("merchant-api", cfg.Upstream.MerchantBaseURL, cfg.Upstream.APIKey, logg,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithMaxAttempts(cfg.Upstream.MaxAttempts),
		upstream.WithBaseDelay(cfg.Upstream.RetryBaseDelay),
	)
	requireResource(ctx, logg, "merchant upstream client", err)

	orderClient, err := upstream.NewClient("order-api", cfg.Upstream.OrderBaseURL, cfg.Upstream.APIKey, logg,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithMaxAttempts(cfg.Upstream.MaxAttempts),
		upstream.WithBaseDelay(cfg.Upstream.RetryBaseDelay),
	)
	requireResource(ctx, logg, "order upstream client", err)

	merchantService, err := merchants.NewService(merchantClient, orderClient, cfg.Orders.PaidStatus, logg)
	requireResource(ctx, logg, "merchant service", err)

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()), merchantService)
	requireResource(ctx, logg, "dashboard service", err)

	mqClient, err := rabbitmq.New(ctx, cfg.RabbitMQ, logg)
	requireResource(ctx, logg, "rabbitmq", err)
	defer func() {
		if err := mqClient.Close(); err != nil {
			logg.Error(ctx, "error closing rabbitmq", err)
		}
	}()

	consumerMetrics := metrics.NewConsumerMetrics(prometheus.NewRegistry())
	consumer, err := orderevents.New(mqClient, dashboardService, cfg.RabbitMQ.Queue, logg, consumerMetrics)
	requireResource(ctx, logg, "order events consumer", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":   cfg.App.Env,
		"queue": cfg.RabbitMQ.Queue,
	})
	logg.Info(runCtx, "order events worker ready")

	runErr := make(chan error, 1)
	go func() {
		runErr <- consumer.Run(runCtx)
	}()

	var failure error
	select {
	case err := <-runErr:
		failure = err
	case amqpErr := <-mqClient.NotifyClose():
		if amqpErr != nil {
			failure = multierr.Append(failure, amqpErr)
		}
		stop()
		failure = multierr.Append(failure, <-runErr)
	}

	if failure != nil && !errors.Is(failure, context.Canceled) {
		logg.Error(runCtx, "order events worker not working", failure)
		os.Exit(1)
	}
	logg.Info(runCtx, "order events worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
