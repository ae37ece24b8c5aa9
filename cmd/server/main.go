package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/yellowpin/yellowpin/internal/api"
	v1 "github.com/yellowpin/yellowpin/internal/api/v1"
	"github.com/yellowpin/yellowpin/internal/cache"
	"github.com/yellowpin/yellowpin/internal/config"
	"github.com/yellowpin/yellowpin/internal/domain/proration"
	"github.com/yellowpin/yellowpin/internal/gateway"
	"github.com/yellowpin/yellowpin/internal/httpclient"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	pubsubRouter "github.com/yellowpin/yellowpin/internal/pubsub/router"
	"github.com/yellowpin/yellowpin/internal/repository"
	"github.com/yellowpin/yellowpin/internal/service"
	"github.com/yellowpin/yellowpin/internal/webhook"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			provideCache,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// HTTP client
			httpclient.NewDefaultClient,

			// Repositories
			repository.NewTierRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,

			// Proration
			provideProrationCalculator,

			// Payment gateway
			gateway.NewGateway,

			// PubSub router
			pubsubRouter.NewRouter,
		),
	)

	// Webhook module (must be initialised before services)
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewTierService,
			service.NewProrationService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewPlanChangeService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideCache() cache.Cache {
	return cache.NewInMemoryCache()
}

func provideProrationCalculator() proration.Calculator {
	return proration.NewCalculator()
}

func provideHandlers(
	logger *logger.Logger,
	tierService service.TierService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	planChangeService service.PlanChangeService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		Tier:         v1.NewTierHandler(tierService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, logger),
		PlanChange:   v1.NewPlanChangeHandler(planChangeService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	startAPIServer(lc, r, cfg, log)
	startMessageRouter(lc, router, webhookService, log)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := webhookService.Start(ctx, router); err != nil {
				return err
			}
			go func() {
				if err := router.Run(); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := webhookService.Stop(); err != nil {
				log.Errorw("failed to stop webhook service", "error", err)
			}
			return router.Close()
		},
	})
}
