package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	"github.com/yellowpin/yellowpin/internal/domain/payment"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceService issues invoices for billing events and guards their status
// transitions
type InvoiceService interface {
	// CreateInvoice issues a pending invoice for a plan change
	CreateInvoice(ctx context.Context, subscriberID string, t *tier.Tier, cycle types.BillingCycle, amount decimal.Decimal, changeType types.PlanChangeType) (*invoice.Invoice, error)
	// MarkPaid transitions the invoice to paid with the payment reference
	MarkPaid(ctx context.Context, inv *invoice.Invoice, p *payment.Payment) error
	// MarkFailed transitions the invoice to failed with the reason in notes
	MarkFailed(ctx context.Context, inv *invoice.Invoice, reason string) error
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, subscriberID string) ([]*invoice.Invoice, error)
}

type invoiceService struct {
	serviceParams ServiceParams
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(serviceParams ServiceParams) InvoiceService {
	return &invoiceService{
		serviceParams: serviceParams,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, subscriberID string, t *tier.Tier, cycle types.BillingCycle, amount decimal.Decimal, changeType types.PlanChangeType) (*invoice.Invoice, error) {
	if amount.IsNegative() {
		return nil, ierr.NewError("invoice amount must be non-negative").
			WithHint("Amounts must be clamped before invoicing").
			Mark(ierr.ErrValidation)
	}

	now := time.Now().UTC()

	number, err := s.nextInvoiceNumber(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	amount = amount.Round(2)
	taxAmount := amount.Mul(types.VATRate).Round(2)

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: number,
		SubscriberID:  subscriberID,
		TierID:        t.ID,
		BillingCycle:  cycle,
		ChangeType:    changeType,
		Amount:        amount,
		TaxAmount:     taxAmount,
		TotalAmount:   amount.Add(taxAmount),
		InvoiceStatus: types.InvoiceStatusPending,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, types.InvoiceDueDays),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.serviceParams.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.serviceParams.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"subscriber_id", subscriberID,
		"amount", inv.Amount.String(),
		"total_amount", inv.TotalAmount.String(),
		"change_type", changeType,
	)

	return inv, nil
}

// nextInvoiceNumber formats INV-{year}-{sequence}, monotonic within the
// year. The pad is wide enough that numbers keep sorting lexicographically
// in creation order past sequence 999.
func (s *invoiceService) nextInvoiceNumber(ctx context.Context, year int) (string, error) {
	seq, err := s.serviceParams.InvoiceRepo.NextSequence(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%06d", types.InvoiceNumberPrefix, year, seq), nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, inv *invoice.Invoice, p *payment.Payment) error {
	if !inv.CanTransitionTo(types.InvoiceStatusPaid) {
		return ierr.NewErrorf("invoice %s cannot transition from %s to %s", inv.ID, inv.InvoiceStatus, types.InvoiceStatusPaid).
			WithHint("The invoice has already been settled").
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"invoice_status": inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidStateTransition)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = lo.ToPtr(now)
	inv.PaymentMethod = lo.ToPtr(p.Method)
	inv.PaymentReference = p.TransactionReference
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	return s.serviceParams.InvoiceRepo.Update(ctx, inv)
}

func (s *invoiceService) MarkFailed(ctx context.Context, inv *invoice.Invoice, reason string) error {
	if inv.InvoiceStatus == types.InvoiceStatusPaid || inv.InvoiceStatus == types.InvoiceStatusRefunded {
		return ierr.NewErrorf("invoice %s cannot transition from %s to %s", inv.ID, inv.InvoiceStatus, types.InvoiceStatusFailed).
			WithHint("A settled invoice cannot be marked failed").
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"invoice_status": inv.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidStateTransition)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusFailed
	inv.Notes = reason
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	return s.serviceParams.InvoiceRepo.Update(ctx, inv)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.serviceParams.InvoiceRepo.Get(ctx, id)
}

func (s *invoiceService) ListInvoices(ctx context.Context, subscriberID string) ([]*invoice.Invoice, error) {
	return s.serviceParams.InvoiceRepo.ListBySubscriber(ctx, subscriberID)
}
