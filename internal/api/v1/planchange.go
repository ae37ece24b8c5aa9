package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/service"
)

type PlanChangeHandler struct {
	service service.PlanChangeService
	log     *logger.Logger
}

func NewPlanChangeHandler(service service.PlanChangeService, log *logger.Logger) *PlanChangeHandler {
	return &PlanChangeHandler{service: service, log: log}
}

// @Summary Change a subscriber's plan
// @Description Prorate, invoice, charge and commit a tier change
// @Tags PlanChanges
// @Accept json
// @Produce json
// @Param request body dto.PlanChangeRequest true "Plan change request"
// @Success 200 {object} dto.PlanChangeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 402 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /plan-changes [post]
func (h *PlanChangeHandler) RequestPlanChange(c *gin.Context) {
	var req dto.PlanChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RequestPlanChange(c.Request.Context(), req)
	if err != nil {
		h.log.Error("Failed to process plan change", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
