package payment

import (
	"context"

	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// ChargeRequest carries everything the gateway needs for one charge
type ChargeRequest struct {
	SubscriberID string
	InvoiceID    string
	Amount       decimal.Decimal
	Currency     string
	Method       types.PaymentMethodType
}

// ChargeResult is the gateway's answer to a charge. Success false with a
// Reason is a decline; a transport-level error is returned as an error from
// Charge instead.
type ChargeResult struct {
	Success              bool
	TransactionReference string
	Reason               string
}

// Gateway abstracts the external payment provider. The concrete integration
// (request signing, async notification callbacks) lives outside the billing
// core; only this contract is depended on. Implementations must honor ctx
// cancellation: the caller bounds every charge with a deadline.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
