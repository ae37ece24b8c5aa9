package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yellowpin/yellowpin/internal/config"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/httpclient"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/pubsub"
	pubsubRouter "github.com/yellowpin/yellowpin/internal/pubsub/router"
	"github.com/yellowpin/yellowpin/internal/types"
)

// Handler interface for processing webhook events
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	client httpclient.Client
	logger *logger.Logger
}

// NewHandler creates a new pubsub-backed delivery handler
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	logger *logger.Logger,
) (Handler, error) {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Webhook,
		client: client,
		logger: logger,
	}, nil
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"webhook_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

// processMessage delivers a single webhook message to the configured endpoint
func (h *handler) processMessage(msg *message.Message) error {
	ctx := msg.Context()

	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil // don't retry on unmarshal errors
	}

	if h.config.EndpointURL == "" {
		h.logger.Debugw("no webhook endpoint configured, skipping delivery",
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    h.config.EndpointURL,
		Headers: map[string]string{
			"X-Webhook-Event": event.EventName,
		},
		Body: msg.Payload,
	})
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ierr.NewError("webhook delivery rejected").
			WithHintf("Endpoint responded with status %d", resp.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}

	h.logger.Infow("webhook delivered",
		"message_uuid", msg.UUID,
		"event_id", event.ID,
		"event_name", event.EventName,
		"subscriber_id", event.SubscriberID,
	)
	return nil
}
