package dto

import (
	"time"

	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	"github.com/yellowpin/yellowpin/internal/domain/proration"
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// PlanChangeRequest represents a request to move a subscriber to a new tier
type PlanChangeRequest struct {
	SubscriberID  string                  `json:"subscriber_id" binding:"required"`
	TargetTier    string                  `json:"target_tier" binding:"required"`
	BillingCycle  types.BillingCycle      `json:"billing_cycle" binding:"required"`
	PaymentMethod types.PaymentMethodType `json:"payment_method" binding:"required"`
}

func (r *PlanChangeRequest) Validate() error {
	if r.SubscriberID == "" {
		return ierr.NewError("subscriber ID is required").
			WithHint("Provide a valid subscriber ID").
			Mark(ierr.ErrValidation)
	}
	if _, err := types.ParseTierName(r.TargetTier); err != nil {
		return err
	}
	if err := r.BillingCycle.Validate(); err != nil {
		return err
	}
	return r.PaymentMethod.Validate()
}

// PlanChangeResponse is returned on a committed plan change
type PlanChangeResponse struct {
	Success              bool                 `json:"success"`
	InvoiceID            string               `json:"invoice_id"`
	InvoiceNumber        string               `json:"invoice_number"`
	Amount               decimal.Decimal      `json:"amount"`
	TotalAmount          decimal.Decimal      `json:"total_amount"`
	Currency             string               `json:"currency"`
	ChangeType           types.PlanChangeType `json:"change_type"`
	TransactionReference *string              `json:"transaction_reference,omitempty"`
	Breakdown            proration.Breakdown  `json:"breakdown"`
	Subscription         *SubscriptionResponse `json:"subscription"`
}

// SubscriptionResponse represents a subscriber's current ledger state
type SubscriptionResponse struct {
	ID                     string             `json:"id"`
	SubscriberID           string             `json:"subscriber_id"`
	TierID                 string             `json:"tier_id"`
	TierName               types.TierName     `json:"tier_name"`
	BillingCycle           types.BillingCycle `json:"billing_cycle"`
	SubscriptionEndsAt     *time.Time         `json:"subscription_ends_at,omitempty"`
	AdvertsRemaining       int                `json:"adverts_remaining"`
	SocialCreditsRemaining int                `json:"social_credits_remaining"`
}

// NewSubscriptionResponse creates a subscription response from the domain model
func NewSubscriptionResponse(s *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                     s.ID,
		SubscriberID:           s.SubscriberID,
		TierID:                 s.TierID,
		TierName:               s.TierName,
		BillingCycle:           s.BillingCycle,
		SubscriptionEndsAt:     s.SubscriptionEndsAt,
		AdvertsRemaining:       s.AdvertsRemaining,
		SocialCreditsRemaining: s.SocialCreditsRemaining,
	}
}

// InvoiceResponse represents an invoice
type InvoiceResponse struct {
	ID            string                   `json:"id"`
	InvoiceNumber string                   `json:"invoice_number"`
	SubscriberID  string                   `json:"subscriber_id"`
	TierID        string                   `json:"tier_id"`
	BillingCycle  types.BillingCycle       `json:"billing_cycle"`
	ChangeType    types.PlanChangeType     `json:"change_type"`
	Amount        decimal.Decimal          `json:"amount"`
	TaxAmount     decimal.Decimal          `json:"tax_amount"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	InvoiceStatus types.InvoiceStatus      `json:"invoice_status"`
	IssueDate     time.Time                `json:"issue_date"`
	DueDate       time.Time                `json:"due_date"`
	PaidAt        *time.Time               `json:"paid_at,omitempty"`
	PaymentMethod *types.PaymentMethodType `json:"payment_method,omitempty"`
}

// NewInvoiceResponse creates an invoice response from the domain model
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		SubscriberID:  inv.SubscriberID,
		TierID:        inv.TierID,
		BillingCycle:  inv.BillingCycle,
		ChangeType:    inv.ChangeType,
		Amount:        inv.Amount,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		InvoiceStatus: inv.InvoiceStatus,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		PaymentMethod: inv.PaymentMethod,
	}
}

// ListInvoicesResponse represents a subscriber's invoice history
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
}

// NewListInvoicesResponse creates the list response from domain models
func NewListInvoicesResponse(invoices []*invoice.Invoice) *ListInvoicesResponse {
	items := make([]*InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, NewInvoiceResponse(inv))
	}
	return &ListInvoicesResponse{Items: items}
}
