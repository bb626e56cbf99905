package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nilecommerce/admin-service/api/controllers"
	"github.com/nilecommerce/admin-service/api/routes"
	"github.com/nilecommerce/admin-service/internal/auth"
	"github.com/nilecommerce/admin-service/internal/dashboard"
	"github.com/nilecommerce/admin-service/internal/merchants"
	"github.com/nilecommerce/admin-service/internal/orders"
	"github.com/nilecommerce/admin-service/internal/users"
	"github.com/nilecommerce/admin-service/pkg/config"
	"github.com/nilecommerce/admin-service/pkg/db"
	"github.com/nilecommerce/admin-service/pkg/logger"
	"github.com/nilecommerce/admin-service/pkg/mailer"
	"github.com/nilecommerce/admin-service/pkg/metrics"
	"github.com/nilecommerce/admin-service/pkg/migrate"
	"github.com/nilecommerce/admin-service/pkg/redis"
	"github.com/nilecommerce/admin-service/pkg/upstream"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "admin-api",
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

	redisClient, err := redis.New(ctx, cfg.Redis)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)

	merchantClient, err := upstream.NewClient("merchant-api", cfg.Upstream.MerchantBaseURL, cfg.Upstream.APIKey, logg,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithMaxAttempts(cfg.Upstream.MaxAttempts),
		upstream.WithBaseDelay(cfg.Upstream.RetryBaseDelay),
		upstream.WithMetrics(upstreamMetrics),
	)
	requireResource(ctx, logg, "merchant upstream client", err)

	orderClient, err := upstream.NewClient("order-api", cfg.Upstream.OrderBaseURL, cfg.Upstream.APIKey, logg,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithMaxAttempts(cfg.Upstream.MaxAttempts),
		upstream.WithBaseDelay(cfg.Upstream.RetryBaseDelay),
		upstream.WithMetrics(upstreamMetrics),
	)
	requireResource(ctx, logg, "order upstream client", err)

	var mail mailer.Mailer
	if cfg.Sendgrid.APIKey != "" {
		mail, err = mailer.NewSendgrid(cfg.Sendgrid, logg)
		requireResource(ctx, logg, "sendgrid mailer", err)
	} else {
		logg.Warn(ctx, "sendgrid api key not set, auth emails will only be logged")
		mail = mailer.NewNoop(logg)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		Mailer:         mail,
		Logger:         logg,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "auth service", err)

	merchantService, err := merchants.NewService(merchantClient, orderClient, cfg.Orders.PaidStatus, logg)
	requireResource(ctx, logg, "merchant service", err)

	orderService, err := orders.NewService(orderClient, cfg.Orders.SuccessSet(), logg)
	requireResource(ctx, logg, "order service", err)

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()), merchantService)
	requireResource(ctx, logg, "dashboard service", err)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Auth:        authService,
		Merchants:   merchantService,
		Orders:      orderService,
		Dashboard:   dashboardService,
		RateLimiter: redisClient,
		Gatherer:    registry,
		Pingers: map[string]controllers.Pinger{
			"database": dbClient.Ping,
			"redis":    redisClient.Ping,
		},
	})

	addr := ":" + cfg.App.Port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting admin api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(runCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "admin api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(runCtx, "shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "forced shutdown after drain timeout", err)
		}
	}

	logg.Info(runCtx, "admin api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
