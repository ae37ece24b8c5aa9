package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/service"
)

type TierHandler struct {
	service service.TierService
	log     *logger.Logger
}

func NewTierHandler(service service.TierService, log *logger.Logger) *TierHandler {
	return &TierHandler{service: service, log: log}
}

// @Summary List active tiers
// @Description List active tiers ordered by monthly price
// @Tags Tiers
// @Produce json
// @Success 200 {object} dto.ListTiersResponse
// @Router /tiers [get]
func (h *TierHandler) ListTiers(c *gin.Context) {
	resp, err := h.service.ListActiveTiers(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list tiers", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a tier
// @Description Get a tier by id or name
// @Tags Tiers
// @Produce json
// @Param id path string true "Tier ID or name"
// @Success 200 {object} dto.TierResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tiers/{id} [get]
func (h *TierHandler) GetTier(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Tier ID or name is required").
			Mark(ierr.ErrValidation))
		return
	}

	t, err := h.service.GetTier(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get tier", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTierResponse(t))
}
