package invoice

import (
	"time"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice records one billing event. Created pending at the start of a plan
// change and moved to paid or failed at the end; immutable thereafter except
// through an explicit refund workflow.
type Invoice struct {
	ID string `db:"id" json:"id"`
	// InvoiceNumber is the human-readable number, INV-{year}-{sequence},
	// unique and monotonic within a year
	InvoiceNumber string              `db:"invoice_number" json:"invoice_number"`
	SubscriberID  string              `db:"subscriber_id" json:"subscriber_id"`
	TierID        string              `db:"tier_id" json:"tier_id"`
	BillingCycle  types.BillingCycle  `db:"billing_cycle" json:"billing_cycle"`
	ChangeType    types.PlanChangeType `db:"change_type" json:"change_type"`
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	TaxAmount     decimal.Decimal     `db:"tax_amount" json:"tax_amount"`
	TotalAmount   decimal.Decimal     `db:"total_amount" json:"total_amount"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	IssueDate     time.Time           `db:"issue_date" json:"issue_date"`
	DueDate       time.Time           `db:"due_date" json:"due_date"`
	PaidAt        *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	PaymentMethod *types.PaymentMethodType `db:"payment_method" json:"payment_method,omitempty"`
	// PaymentReference is the gateway transaction reference once paid
	PaymentReference *string `db:"payment_reference" json:"payment_reference,omitempty"`
	Notes            string  `db:"notes" json:"notes,omitempty"`
	types.BaseModel
}

// CanTransitionTo guards invoice status transitions. Paid and refunded are
// terminal for this core; failed may move to paid on a later attempt.
func (i *Invoice) CanTransitionTo(target types.InvoiceStatus) bool {
	switch i.InvoiceStatus {
	case types.InvoiceStatusPending:
		return target == types.InvoiceStatusPaid || target == types.InvoiceStatusFailed
	case types.InvoiceStatusFailed:
		return target == types.InvoiceStatusPaid
	default:
		return false
	}
}

// RevertSettlement clears the settlement fields set by a payment whose
// enclosing transaction rolled back, returning the in-memory invoice to
// pending so it can be marked failed against the stored row.
func (i *Invoice) RevertSettlement() {
	i.InvoiceStatus = types.InvoiceStatusPending
	i.PaidAt = nil
	i.PaymentMethod = nil
	i.PaymentReference = nil
}

func (i *Invoice) Validate() error {
	if i.Amount.IsNegative() {
		return ierr.NewError("amount must be non-negative").
			WithHint("Invoice amounts cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if i.TaxAmount.IsNegative() {
		return ierr.NewError("tax amount must be non-negative").
			WithHint("Invoice amounts cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if !i.Amount.Add(i.TaxAmount).Equal(i.TotalAmount) {
		return ierr.NewError("total amount must equal amount plus tax").
			WithHint("Invoice totals are inconsistent").
			WithReportableDetails(map[string]any{
				"amount":       i.Amount,
				"tax_amount":   i.TaxAmount,
				"total_amount": i.TotalAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	if i.DueDate.Before(i.IssueDate) {
		return ierr.NewError("due date must not precede issue date").
			WithHint("Invoice dates are inconsistent").
			Mark(ierr.ErrValidation)
	}
	if err := i.ChangeType.Validate(); err != nil {
		return err
	}
	return i.InvoiceStatus.Validate()
}
