package webhook

import (
	"go.uber.org/fx"

	"github.com/yellowpin/yellowpin/internal/config"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/pubsub"
	"github.com/yellowpin/yellowpin/internal/pubsub/memory"
	"github.com/yellowpin/yellowpin/internal/webhook/handler"
	"github.com/yellowpin/yellowpin/internal/webhook/publisher"
)

// Module provides all webhook-related dependencies
var Module = fx.Options(
	fx.Provide(
		providePubSub,

		// Publisher for sending webhook events
		publisher.NewPublisher,

		// Handler for delivering webhook events
		handler.NewHandler,

		// Main webhook service
		NewWebhookService,
	),
)

func providePubSub(
	cfg *config.Configuration,
	logger *logger.Logger,
) pubsub.PubSub {
	return memory.NewPubSub(cfg, logger)
}
