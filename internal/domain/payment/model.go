package payment

import (
	"time"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// Payment records one charge against an invoice. Several payments may exist
// for one invoice when the caller retries after a failure.
type Payment struct {
	ID           string                  `db:"id" json:"id"`
	InvoiceID    string                  `db:"invoice_id" json:"invoice_id"`
	SubscriberID string                  `db:"subscriber_id" json:"subscriber_id"`
	Amount       decimal.Decimal         `db:"amount" json:"amount"`
	Currency     string                  `db:"currency" json:"currency"`
	Method       types.PaymentMethodType `db:"method" json:"method"`
	Status       types.PaymentStatus     `db:"status" json:"status"`
	// TransactionReference is the gateway's identifier, nil until success
	TransactionReference *string    `db:"transaction_reference" json:"transaction_reference,omitempty"`
	FailureReason        *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	SucceededAt          *time.Time `db:"succeeded_at" json:"succeeded_at,omitempty"`
	FailedAt             *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	types.BaseModel
}

func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice ID is required").
			WithHint("Payments must reference an invoice").
			Mark(ierr.ErrValidation)
	}
	if p.Amount.IsNegative() {
		return ierr.NewError("amount must be non-negative").
			WithHint("Payment amounts cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if err := p.Method.Validate(); err != nil {
		return err
	}
	return p.Status.Validate()
}
