package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/service"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

// @Summary Get a subscriber's subscription
// @Description Get the ledger row for a subscriber
// @Tags Subscriptions
// @Produce json
// @Param subscriber_id path string true "Subscriber ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscribers/{subscriber_id}/subscription [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	subscriberID := c.Param("subscriber_id")
	if subscriberID == "" {
		c.Error(ierr.NewError("subscriber_id is required").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	sub, err := h.service.GetCurrent(c.Request.Context(), subscriberID)
	if err != nil {
		h.log.Error("Failed to get subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubscriptionResponse(sub))
}

// @Summary Register a subscriber
// @Description Create the default basic-tier subscription for a new subscriber
// @Tags Subscriptions
// @Produce json
// @Param subscriber_id path string true "Subscriber ID"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscribers/{subscriber_id}/subscription [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	subscriberID := c.Param("subscriber_id")
	if subscriberID == "" {
		c.Error(ierr.NewError("subscriber_id is required").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	sub, err := h.service.CreateDefault(c.Request.Context(), subscriberID)
	if err != nil {
		h.log.Error("Failed to create subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSubscriptionResponse(sub))
}
