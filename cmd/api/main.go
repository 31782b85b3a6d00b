package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dimensionalz-backend/api/routes"
	"github.com/angelmondragon/dimensionalz-backend/internal/bootstrap"
	stripewebhook "github.com/angelmondragon/dimensionalz-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db"
	"github.com/angelmondragon/dimensionalz-backend/pkg/instance"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
	"github.com/angelmondragon/dimensionalz-backend/pkg/migrate"
	"github.com/angelmondragon/dimensionalz-backend/pkg/redis"
)

const stripeEventTTL = 72 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stack, err := bootstrap.NewCheckoutStack(context.Background(), bootstrap.CheckoutStackParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Registry: prometheus.DefaultRegisterer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire checkout stack", err)
		os.Exit(1)
	}

	routerParams := routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Identity:        stack.Identity,
		Cart:            stack.Cart,
		Checkout:        stack.Checkout,
		Oracle:          stack.Oracle,
		SandboxPayments: stack.Sandbox,
		Metrics:         promhttp.Handler(),
	}

	if stack.Stripe != nil {
		webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
			Checkout: stack.Checkout,
			Logger:   logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe webhook service", err)
			os.Exit(1)
		}
		guard, err := stripewebhook.NewIdempotencyGuard(redisClient, stripeEventTTL, "stripe-webhook")
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe webhook guard", err)
			os.Exit(1)
		}
		routerParams.StripeClient = stack.Stripe
		routerParams.StripeWebhookService = webhookService
		routerParams.StripeWebhookGuard = guard
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"sandbox":  stack.Sandbox,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(routerParams),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
