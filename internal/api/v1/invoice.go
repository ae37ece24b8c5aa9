package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/service"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

// @Summary Get an invoice
// @Description Get an invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	inv, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}

// @Summary List a subscriber's invoices
// @Description List invoices for a subscriber, newest first
// @Tags Invoices
// @Produce json
// @Param subscriber_id query string true "Subscriber ID"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	subscriberID := c.Query("subscriber_id")
	if subscriberID == "" {
		c.Error(ierr.NewError("subscriber_id is required").
			WithHint("Subscriber ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), subscriberID)
	if err != nil {
		h.log.Error("Failed to list invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListInvoicesResponse(invoices))
}
