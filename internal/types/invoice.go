package types

import (
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusPending indicates the invoice has been issued and awaits payment
	InvoiceStatusPending InvoiceStatus = "PENDING"
	// InvoiceStatusPaid indicates payment has been received in full
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusFailed indicates the payment attempt for the invoice failed
	InvoiceStatusFailed InvoiceStatus = "FAILED"
	// InvoiceStatusRefunded indicates the paid amount has been returned
	InvoiceStatusRefunded InvoiceStatus = "REFUNDED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusFailed,
		InvoiceStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid invoice status: %s", s).
			WithHint("Invoice status must be PENDING, PAID, FAILED, or REFUNDED").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// VATRate is the fixed value-added tax rate applied to every invoice
var VATRate = decimal.NewFromFloat(0.15)

// InvoiceDueDays is the number of days after issue before an invoice is due
const InvoiceDueDays = 7

// InvoiceNumberPrefix is the human-readable prefix for invoice numbers,
// formatted as INV-{year}-{sequence}
const InvoiceNumberPrefix = "INV"
